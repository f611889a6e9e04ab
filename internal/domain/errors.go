package domain

import "errors"

var (
	// ErrInvalidParameter signals a request parameter that failed cleaning.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedSearchType signals a search type the backend cannot execute.
	ErrUnsupportedSearchType = errors.New("unsupported search type")
)
