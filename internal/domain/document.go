package domain

// Document is a single backend hit.
type Document struct {
	ID     string
	Score  float64
	Source map[string]string
}

// Field returns a source field or "" when absent.
func (d *Document) Field(name string) string {
	if d.Source == nil {
		return ""
	}
	return d.Source[name]
}
