package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

const dataParam = "data"

// searchQuery reads the raw search text from ?data=.
func searchQuery(r *http.Request) (string, error) {
	q := strings.TrimSpace(r.URL.Query().Get(dataParam))
	if q == "" {
		return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidQuery, dataParam)
	}
	return q, nil
}

// Location payload fields a category route may require beyond the id.
const (
	fieldLatitude       = "latitude"
	fieldLongitude      = "longitude"
	fieldFormattedQuery = "formatted_query"
)

var (
	needCoordinates    = []string{fieldLatitude, fieldLongitude}
	needFormattedQuery = []string{fieldFormattedQuery}
)

// locationQuery reads a previously resolved location either as a JSON object
// in ?data= or as bracketed fields (?data[id]=1&data[latitude]=...). Every
// field in need must be present and non-empty; a missing coordinate is not
// read as zero.
func locationQuery(r *http.Request, need ...string) (domain.Location, error) {
	loc, present, err := decodeLocation(r)
	if err != nil {
		return domain.Location{}, err
	}
	for _, name := range need {
		if !present[name] {
			return domain.Location{}, fmt.Errorf("%w: missing %s[%s]", domain.ErrInvalidQuery, dataParam, name)
		}
	}
	return loc, nil
}

func decodeLocation(r *http.Request) (domain.Location, map[string]bool, error) {
	values := r.URL.Query()

	if raw := values.Get(dataParam); raw != "" {
		var loc domain.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return domain.Location{}, nil, fmt.Errorf("%w: %s is not a location object: %v", domain.ErrInvalidQuery, dataParam, err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return domain.Location{}, nil, fmt.Errorf("%w: %s is not a location object: %v", domain.ErrInvalidQuery, dataParam, err)
		}
		present := make(map[string]bool, len(fields))
		for name, v := range fields {
			switch string(v) {
			case "null", `""`:
			default:
				present[name] = true
			}
		}
		return loc, present, nil
	}

	field := func(name string) string { return strings.TrimSpace(values.Get(dataParam + "[" + name + "]")) }
	idText := field("id")
	if idText == "" {
		return domain.Location{}, nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidQuery, dataParam)
	}

	var (
		loc domain.Location
		err error
	)
	if loc.ID, err = strconv.ParseInt(idText, 10, 64); err != nil {
		return domain.Location{}, nil, fmt.Errorf("%w: id: %v", domain.ErrInvalidQuery, err)
	}
	if loc.Latitude, err = parseCoord(field(fieldLatitude)); err != nil {
		return domain.Location{}, nil, fmt.Errorf("%w: latitude: %v", domain.ErrInvalidQuery, err)
	}
	if loc.Longitude, err = parseCoord(field(fieldLongitude)); err != nil {
		return domain.Location{}, nil, fmt.Errorf("%w: longitude: %v", domain.ErrInvalidQuery, err)
	}
	loc.SearchQuery = field("search_query")
	loc.FormattedQuery = field(fieldFormattedQuery)

	present := map[string]bool{"id": true}
	for _, name := range []string{fieldLatitude, fieldLongitude, "search_query", fieldFormattedQuery} {
		present[name] = field(name) != ""
	}
	return loc, present, nil
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// categoriesQuery reads ?categories=weather,events and repeated forms.
func categoriesQuery(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["categories"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
