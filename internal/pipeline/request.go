// Package pipeline carries one logical search request through a chain of stages.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Params is the cleaned, stage-opaque parameter bag of a request.
type Params map[string]any

// String returns a string parameter or "".
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns an int parameter or def.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key].(int); ok {
		return v
	}
	return def
}

// Float returns a float parameter and whether it was present.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

// Strings returns a list parameter or nil.
func (p Params) Strings(key string) []string {
	v, _ := p[key].([]string)
	return v
}

// Bool returns a boolean parameter or false.
func (p Params) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Response is the payload built up by the stages.
type Response struct {
	Data []domain.Document
	Meta map[string]any
}

// Request is the per-request context shared by stages. A Request is owned
// by exactly one in-flight pipeline and must not be shared between goroutines.
type Request struct {
	ID         string
	Path       string
	Clean      Params
	Errors     []string
	Response   Response
	DoNotTrack bool

	debug *DebugLog
}

// NewRequest creates a request with a fresh ID.
func NewRequest(path string, clean Params) *Request {
	if clean == nil {
		clean = Params{}
	}
	return &Request{
		ID:    uuid.NewString(),
		Path:  path,
		Clean: clean,
		Response: Response{
			Meta: map[string]any{},
		},
	}
}

// AddError appends an error message to the request.
func (r *Request) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// EnableDebug turns on the debug trail.
func (r *Request) EnableDebug() {
	if r.debug == nil {
		r.debug = &DebugLog{}
	}
}

// Debug returns the debug trail, nil when debugging is disabled.
func (r *Request) Debug() *DebugLog {
	return r.debug
}
