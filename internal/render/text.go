// Package render turns cleaned search parameters into RediSearch queries.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

// Cleaned parameter names read by the renderers.
const (
	ParamText         = "text"
	ParamSize         = "size"
	ParamLayers       = "layers"
	ParamSources      = "sources"
	ParamCountry      = "boundary.country"
	ParamCircleLat    = "boundary.circle.lat"
	ParamCircleLon    = "boundary.circle.lon"
	ParamCircleRadius = "boundary.circle.radius"
)

// QueryTypeFulltext tags queries rendered by Text.
const QueryTypeFulltext = "search_fulltext"

const (
	defaultSizeFallback = 10
	defaultCircleKM     = 50.0
)

var returnFields = []string{
	domain.FieldName,
	domain.FieldLabel,
	domain.FieldLayer,
	domain.FieldSource,
	domain.FieldCountry,
	domain.FieldPopularity,
	domain.FieldCenterPoint,
}

// Text renders a full-text place search.
type Text struct {
	defaultSize int
	maxSize     int
}

// NewText creates a renderer; sizes < 1 fall back to 10.
func NewText(defaultSize, maxSize int) *Text {
	if defaultSize < 1 {
		defaultSize = defaultSizeFallback
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &Text{defaultSize: defaultSize, maxSize: maxSize}
}

// Render builds the query. It reports false when there is no text to search.
func (t *Text) Render(clean pipeline.Params, _ *pipeline.Response) (query.Rendered, bool) {
	terms := tokenize(clean.String(ParamText))
	if len(terms) == 0 {
		return query.Rendered{}, false
	}

	parts := []string{
		fmt.Sprintf("@%s|%s:(%s)", domain.FieldName, domain.FieldLabel, strings.Join(terms, " ")),
	}
	if f := tagFilter(domain.FieldLayer, clean.Strings(ParamLayers)); f != "" {
		parts = append(parts, f)
	}
	if f := tagFilter(domain.FieldSource, clean.Strings(ParamSources)); f != "" {
		parts = append(parts, f)
	}
	if c := clean.String(ParamCountry); c != "" {
		parts = append(parts, tagFilter(domain.FieldCountry, []string{strings.ToUpper(c)}))
	}
	if f := circleFilter(clean); f != "" {
		parts = append(parts, f)
	}

	size := clean.Int(ParamSize, t.defaultSize)
	size = min(max(size, 1), t.maxSize)

	return query.Rendered{
		Body: query.Body{
			Query:        strings.Join(parts, " "),
			Limit:        size,
			ReturnFields: returnFields,
		},
		Type: QueryTypeFulltext,
	}, true
}

// tokenize splits on anything the index tokenizer would treat as a separator,
// so the terms need no query escaping.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tagFilter(field string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	if len(escaped) == 0 {
		return ""
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, " | "))
}

func circleFilter(clean pipeline.Params) string {
	lat, okLat := clean.Float(ParamCircleLat)
	lon, okLon := clean.Float(ParamCircleLon)
	if !okLat || !okLon {
		return ""
	}
	radius, ok := clean.Float(ParamCircleRadius)
	if !ok || radius <= 0 {
		radius = defaultCircleKM
	}
	return fmt.Sprintf("@%s:[%s %s %s km]", domain.FieldCenterPoint,
		formatFloat(lon), formatFloat(lat), formatFloat(radius))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
