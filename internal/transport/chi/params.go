package chi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
	"github.com/kailas-cloud/docsearch/internal/render"
)

// ParamDebug enables the debug trail in the response.
const ParamDebug = "debug"

const maxTextLength = 500

var (
	validLayers = map[string]struct{}{
		"venue": {}, "address": {}, "street": {}, "neighbourhood": {}, "locality": {},
		"county": {}, "region": {}, "country": {}, "postalcode": {},
	}
	validSources = map[string]struct{}{
		"osm": {}, "oa": {}, "gn": {}, "wof": {}, "fsq": {},
	}
)

// cleanSearchParams validates query-string parameters into the cleaned bag the
// pipeline stages read. maxSize bounds the size parameter.
func cleanSearchParams(q url.Values, maxSize int) (pipeline.Params, error) {
	clean := pipeline.Params{}

	text := strings.TrimSpace(q.Get(render.ParamText))
	if text == "" {
		return nil, invalid(render.ParamText, "is required")
	}
	if len(text) > maxTextLength {
		return nil, invalid(render.ParamText, fmt.Sprintf("must be at most %d bytes", maxTextLength))
	}
	clean[render.ParamText] = text

	if raw := q.Get(render.ParamSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxSize {
			return nil, invalid(render.ParamSize, fmt.Sprintf("must be an integer between 1 and %d", maxSize))
		}
		clean[render.ParamSize] = size
	}

	layers, err := cleanList(q.Get(render.ParamLayers), render.ParamLayers, validLayers)
	if err != nil {
		return nil, err
	}
	if len(layers) > 0 {
		clean[render.ParamLayers] = layers
	}

	sources, err := cleanList(q.Get(render.ParamSources), render.ParamSources, validSources)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		clean[render.ParamSources] = sources
	}

	if c := strings.TrimSpace(q.Get(render.ParamCountry)); c != "" {
		if (len(c) != 2 && len(c) != 3) || !isAlpha(c) {
			return nil, invalid(render.ParamCountry, "must be an ISO 3166-1 alpha-2 or alpha-3 code")
		}
		clean[render.ParamCountry] = strings.ToUpper(c)
	}

	if err := cleanCircle(q, clean); err != nil {
		return nil, err
	}

	if raw := q.Get(ParamDebug); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid(ParamDebug, "must be a boolean")
		}
		clean[ParamDebug] = debug
	}

	return clean, nil
}

func cleanList(raw, name string, allowed map[string]struct{}) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, v := range strings.Split(raw, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := allowed[v]; !ok {
			return nil, invalid(name, fmt.Sprintf("unknown value %q", v))
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func cleanCircle(q url.Values, clean pipeline.Params) error {
	rawLat, rawLon := q.Get(render.ParamCircleLat), q.Get(render.ParamCircleLon)
	if rawLat == "" && rawLon == "" {
		if q.Get(render.ParamCircleRadius) != "" {
			return invalid(render.ParamCircleRadius, "requires boundary.circle.lat and boundary.circle.lon")
		}
		return nil
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return invalid(render.ParamCircleLat, "must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return invalid(render.ParamCircleLon, "must be a number between -180 and 180")
	}
	clean[render.ParamCircleLat] = lat
	clean[render.ParamCircleLon] = lon

	if raw := q.Get(render.ParamCircleRadius); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return invalid(render.ParamCircleRadius, "must be a positive number of kilometers")
		}
		clean[render.ParamCircleRadius] = radius
	}
	return nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func invalid(param, msg string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrInvalidParameter, param, msg)
}
