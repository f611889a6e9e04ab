package db

import "github.com/kailas-cloud/docsearch/internal/domain/search/query"

// SearchCommand is the input of one backend search call. SearchType is one
// of the query.SearchType* constants.
type SearchCommand struct {
	Index      string
	SearchType string
	Body       query.Body
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
