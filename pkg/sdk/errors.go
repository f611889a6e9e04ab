package docsearch

import "github.com/kailas-cloud/docsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidParameter      = domain.ErrInvalidParameter
	ErrUnsupportedSearchType = domain.ErrUnsupportedSearchType
)
