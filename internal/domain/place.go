package domain

// Place document fields stored in the search index.
const (
	FieldName        = "name"
	FieldLabel       = "label"
	FieldLayer       = "layer"
	FieldSource      = "source"
	FieldCountry     = "country"
	FieldPopularity  = "popularity"
	FieldCenterPoint = "center_point"
)
