// Package services holds logic shared by controllers: the query-string
// feature builder, the timeline projection and the push notifier.
package services

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicpulse/model"
)

// EarthRadiusMiles converts a radius in miles into radians for
// $centerSphere.
const EarthRadiusMiles = 3963.2

// Comparison operators accepted in the bracket form field[op]=value.
var operators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

// Keys consumed by the feature builder itself rather than matched against
// document fields.
var reservedKeys = map[string]bool{
	"page":      true,
	"limit":     true,
	"sort":      true,
	"fields":    true,
	"latitude":  true,
	"longitude": true,
	"radius":    true,
}

type QueryDefaults struct {
	Sort  string
	Limit int64
}

// ReportDefaults and OrgDefaults mirror the two pagination profiles: feeds
// of reports page in tens newest-first, admin lists page in hundreds by
// name.
var (
	ReportDefaults = QueryDefaults{Sort: "-createdAt", Limit: 10}
	OrgDefaults    = QueryDefaults{Sort: "name", Limit: 100}
)

// QueryFeatures is the parsed form of a flat request query string.
type QueryFeatures struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int64
	Limit      int64
	Geo        bool
}

// ParseQuery translates the flat query-string representation into a mongo
// filter plus find options. When latitude, longitude and radius are all
// present the equality filters are dropped and replaced by a spherical
// containment clause on location.coordinates.
func ParseQuery(values url.Values, defaults QueryDefaults) QueryFeatures {
	q := QueryFeatures{
		Filter: bson.M{},
		Page:   parsePositive(values.Get("page"), 1),
		Limit:  parsePositive(values.Get("limit"), defaults.Limit),
	}

	lat, latOK := parseFloat(values.Get("latitude"))
	lng, lngOK := parseFloat(values.Get("longitude"))
	radius, radOK := parseFloat(values.Get("radius"))

	if latOK && lngOK && radOK {
		q.Geo = true
		q.Filter = bson.M{
			"location.coordinates": bson.M{
				"$geoWithin": bson.M{
					"$centerSphere": bson.A{
						bson.A{lng, lat},
						radius / EarthRadiusMiles,
					},
				},
			},
		}
	} else {
		for key, vals := range values {
			if reservedKeys[key] || len(vals) == 0 {
				continue
			}
			field, op := splitOperator(key)
			if op == "" {
				q.Filter[field] = coerce(vals[0])
				continue
			}
			mongoOp, known := operators[op]
			if !known {
				continue
			}
			clause, ok := q.Filter[field].(bson.M)
			if !ok {
				clause = bson.M{}
				q.Filter[field] = clause
			}
			if mongoOp == "$in" {
				parts := strings.Split(vals[0], ",")
				list := make(bson.A, 0, len(parts))
				for _, p := range parts {
					list = append(list, coerce(strings.TrimSpace(p)))
				}
				clause[mongoOp] = list
			} else {
				clause[mongoOp] = coerce(vals[0])
			}
		}
	}

	sort := values.Get("sort")
	if sort == "" {
		sort = defaults.Sort
	}
	q.Sort = parseSort(sort)

	if fields := values.Get("fields"); fields != "" {
		q.Projection = bson.M{}
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Projection[f] = 1
			}
		}
	}
	return q
}

// FindOptions materializes sort, projection and skip/limit for a Find call.
func (q QueryFeatures) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSort(q.Sort).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)
	if q.Projection != nil {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// Pagination computes the next/prev page refs for the response envelope.
func (q QueryFeatures) Pagination(total int64) *model.Pagination {
	p := &model.Pagination{}
	if q.Page*q.Limit < total {
		p.Next = &model.PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		p.Prev = &model.PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	if p.Next == nil && p.Prev == nil {
		return nil
	}
	return p
}

// splitOperator decomposes "createdAt[gte]" into ("createdAt", "gte"); a
// bare key returns an empty operator.
func splitOperator(key string) (field, op string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

func parseSort(spec string) bson.D {
	var sort bson.D
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		sort = append(sort, bson.E{Key: part, Value: dir})
	}
	return sort
}

// coerce guesses the BSON type of a query-string value: number, bool,
// RFC3339 time, otherwise string.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return raw
}

func parsePositive(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	return f, err == nil
}
