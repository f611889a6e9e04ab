// Package query holds the value types a renderer produces for the search backend.
package query

// Body is a backend-agnostic search request body.
type Body struct {
	Query        string
	Params       map[string]string
	Offset       int
	Limit        int
	ReturnFields []string
	SortBy       string
	SortDesc     bool
}

// Rendered is an immutable rendered query: the body plus a free-form type tag
// used for downstream classification and metrics.
type Rendered struct {
	Body Body
	Type string
}

// Search types understood by the backend.
const (
	// SearchTypeDFSQueryThenFetch scores with index-wide term statistics.
	SearchTypeDFSQueryThenFetch = "dfs_query_then_fetch"
	// SearchTypeQueryThenFetch uses the backend's default scorer.
	SearchTypeQueryThenFetch = "query_then_fetch"
)
