package db

// HashSetItem is one hash to store.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// IndexStats is the subset of FT.INFO the service reports.
type IndexStats struct {
	NumDocs          int64
	InvertedSizeMB   float64
	DocTableSizeMB   float64
	GeoIndexSizeMB   float64
	Indexing         bool
	PercentIndexed   float64
	HashIndexingFail int64
}
