package search

import (
	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// PlacesIndex describes the hash index the search endpoint queries.
func PlacesIndex(name, keyPrefix string) *db.IndexBuilder {
	return db.NewIndex(name).
		Prefix(keyPrefix).
		Text(domain.FieldName, 2).
		Text(domain.FieldLabel, 0).
		Tag(domain.FieldLayer).
		Tag(domain.FieldSource).
		Tag(domain.FieldCountry).
		Numeric(domain.FieldPopularity).
		Geo(domain.FieldCenterPoint)
}
