// Package outcome describes the result of a single backend search attempt.
package outcome

import (
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Kind classifies an attempt's error.
type Kind int

const (
	// NoError means the attempt succeeded.
	NoError Kind = iota
	// Timeout means the backend reported a request timeout (retryable).
	Timeout
	// Other is any other backend failure (never retried).
	Other
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "ok"
	case Timeout:
		return "timeout"
	case Other:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is produced once per attempt and consumed immediately by the controller.
type Outcome struct {
	Kind     Kind
	Attempt  int
	Docs     []domain.Document
	Meta     map[string]any
	Err      error
	Start    time.Time
	Duration time.Duration
}

// Success reports whether the attempt returned without error.
func (o *Outcome) Success() bool { return o.Kind == NoError }
