package main

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

const (
	layerVenue = "venue"
	sourceFSQ  = "fsq"
)

// Skip reasons reported in rows_skipped_total.
const (
	skipNoID     = "no_id"
	skipNoName   = "no_name"
	skipNoCoords = "no_coords"
	skipClosed   = "closed"
)

// fsqPlaceRow is a raw row of the FSQ OS Places parquet dataset.
type fsqPlaceRow struct {
	FSQPlaceID       string   `parquet:"fsq_place_id"`
	Name             string   `parquet:"name"`
	Latitude         *float64 `parquet:"latitude"`
	Longitude        *float64 `parquet:"longitude"`
	Locality         *string  `parquet:"locality"`
	Region           *string  `parquet:"region"`
	Country          *string  `parquet:"country"`
	FSQCategoryLabel []string `parquet:"fsq_category_labels,list"`
	DateClosed       *string  `parquet:"date_closed"`
}

// toPlace converts a row into an indexable place document.
// When the row cannot be indexed the skip reason is returned instead.
func toPlace(row *fsqPlaceRow) (domain.Document, string) {
	name := strings.TrimSpace(row.Name)
	switch {
	case row.FSQPlaceID == "":
		return domain.Document{}, skipNoID
	case name == "":
		return domain.Document{}, skipNoName
	case !validCoords(row.Latitude, row.Longitude):
		return domain.Document{}, skipNoCoords
	case deref(row.DateClosed) != "":
		return domain.Document{}, skipClosed
	}

	fields := map[string]string{
		domain.FieldName:        name,
		domain.FieldLabel:       label(name, deref(row.Locality), deref(row.Region), deref(row.Country)),
		domain.FieldLayer:       layerVenue,
		domain.FieldSource:      sourceFSQ,
		domain.FieldCenterPoint: geoPoint(*row.Latitude, *row.Longitude),
	}
	if c := strings.ToUpper(strings.TrimSpace(deref(row.Country))); c != "" {
		fields[domain.FieldCountry] = c
	}

	return domain.Document{ID: row.FSQPlaceID, Source: fields}, ""
}

// label joins the non-empty administrative parts: "Name, Locality, Region, Country".
func label(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// geoPoint formats a RediSearch GEO value ("lon,lat").
func geoPoint(lat, lon float64) string {
	return strconv.FormatFloat(lon, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
}

func validCoords(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	if *lat == 0 && *lon == 0 {
		return false
	}
	return *lat >= -85.05112878 && *lat <= 85.05112878 && *lon >= -180 && *lon <= 180
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
