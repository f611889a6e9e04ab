package search

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
)

type statusCoder interface {
	StatusCode() int
}

// Classify maps an attempt error to an outcome kind. Only a backend-reported
// request timeout (408) anywhere in the error chain is retryable.
func Classify(err error) outcome.Kind {
	if err == nil {
		return outcome.NoError
	}
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusRequestTimeout {
		return outcome.Timeout
	}
	return outcome.Other
}
