package services

import (
	"net/url"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func parseRawQuery(t *testing.T, raw string, defaults QueryDefaults) QueryFeatures {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad query %q: %v", raw, err)
	}
	return ParseQuery(values, defaults)
}

func TestExactMatchFilter(t *testing.T) {
	q := parseRawQuery(t, "status=Pending&severity=High", ReportDefaults)
	if q.Filter["status"] != "Pending" || q.Filter["severity"] != "High" {
		t.Fatalf("unexpected filter: %v", q.Filter)
	}
}

func TestOperatorTranslation(t *testing.T) {
	q := parseRawQuery(t, "rating[gte]=3&rating[lt]=5", ReportDefaults)
	clause, ok := q.Filter["rating"].(bson.M)
	if !ok {
		t.Fatalf("expected operator clause, got %v", q.Filter["rating"])
	}
	if clause["$gte"] != 3.0 || clause["$lt"] != 5.0 {
		t.Fatalf("unexpected clause: %v", clause)
	}
}

func TestInOperatorSplitsCommas(t *testing.T) {
	q := parseRawQuery(t, "status[in]=Pending,Assigned", ReportDefaults)
	clause := q.Filter["status"].(bson.M)
	list, ok := clause["$in"].(bson.A)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected $in list: %v", clause["$in"])
	}
	if list[0] != "Pending" || list[1] != "Assigned" {
		t.Fatalf("unexpected $in values: %v", list)
	}
}

func TestUnknownOperatorIgnored(t *testing.T) {
	q := parseRawQuery(t, "status[regex]=Pen", ReportDefaults)
	if _, ok := q.Filter["status"]; ok {
		t.Fatalf("unknown operator should be dropped, got %v", q.Filter)
	}
}

func TestGeoQueryOverridesEqualityFilters(t *testing.T) {
	q := parseRawQuery(t, "latitude=37.77&longitude=-122.42&radius=5&status=Pending", ReportDefaults)
	if !q.Geo {
		t.Fatal("geo flag not set")
	}
	if _, ok := q.Filter["status"]; ok {
		t.Fatal("equality filter should be ignored on geo queries")
	}
	clause, ok := q.Filter["location.coordinates"].(bson.M)
	if !ok {
		t.Fatalf("missing geo clause: %v", q.Filter)
	}
	sphere := clause["$geoWithin"].(bson.M)["$centerSphere"].(bson.A)
	center := sphere[0].(bson.A)
	if center[0] != -122.42 || center[1] != 37.77 {
		t.Fatalf("center must be [lng, lat], got %v", center)
	}
	// Divide through variables so both sides are runtime float64
	// arithmetic; a folded constant expression differs by one ulp.
	radians := sphere[1].(float64)
	miles := 5.0
	if want := miles / EarthRadiusMiles; radians != want {
		t.Fatalf("radius radians: got %v want %v", radians, want)
	}
}

func TestGeoRequiresAllThreeParams(t *testing.T) {
	q := parseRawQuery(t, "latitude=37.77&radius=5&status=Pending", ReportDefaults)
	if q.Geo {
		t.Fatal("geo should need latitude, longitude and radius together")
	}
	if q.Filter["status"] != "Pending" {
		t.Fatalf("equality filter lost: %v", q.Filter)
	}
}

func TestDefaultSortAndPagination(t *testing.T) {
	q := parseRawQuery(t, "", ReportDefaults)
	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("report defaults: page=%d limit=%d", q.Page, q.Limit)
	}
	if len(q.Sort) != 1 || q.Sort[0].Key != "createdAt" || q.Sort[0].Value != -1 {
		t.Fatalf("default sort should be -createdAt: %v", q.Sort)
	}

	q = parseRawQuery(t, "", OrgDefaults)
	if q.Limit != 100 {
		t.Fatalf("org default limit: %d", q.Limit)
	}
	if q.Sort[0].Key != "name" || q.Sort[0].Value != 1 {
		t.Fatalf("org default sort should be name asc: %v", q.Sort)
	}
}

func TestSortSpecParsing(t *testing.T) {
	q := parseRawQuery(t, "sort=-severity,createdAt", ReportDefaults)
	if len(q.Sort) != 2 {
		t.Fatalf("unexpected sort: %v", q.Sort)
	}
	if q.Sort[0].Key != "severity" || q.Sort[0].Value != -1 {
		t.Fatalf("first sort key wrong: %v", q.Sort[0])
	}
	if q.Sort[1].Key != "createdAt" || q.Sort[1].Value != 1 {
		t.Fatalf("second sort key wrong: %v", q.Sort[1])
	}
}

func TestFieldsProjection(t *testing.T) {
	q := parseRawQuery(t, "fields=title,status", ReportDefaults)
	if q.Projection["title"] != 1 || q.Projection["status"] != 1 {
		t.Fatalf("unexpected projection: %v", q.Projection)
	}
}

func TestValueCoercion(t *testing.T) {
	q := parseRawQuery(t, "rating=4&escalated=true&createdAt[gte]=2026-01-02T00:00:00Z", ReportDefaults)
	if q.Filter["rating"] != 4.0 {
		t.Errorf("numeric coercion failed: %v", q.Filter["rating"])
	}
	if q.Filter["escalated"] != true {
		t.Errorf("bool coercion failed: %v", q.Filter["escalated"])
	}
	clause := q.Filter["createdAt"].(bson.M)
	if _, ok := clause["$gte"].(time.Time); !ok {
		t.Errorf("time coercion failed: %T", clause["$gte"])
	}
}

func TestPaginationMeta(t *testing.T) {
	q := QueryFeatures{Page: 1, Limit: 10}
	p := q.Pagination(25)
	if p == nil || p.Next == nil || p.Next.Page != 2 || p.Prev != nil {
		t.Fatalf("page 1 of 25: %+v", p)
	}

	q.Page = 3
	p = q.Pagination(25)
	if p == nil || p.Next != nil || p.Prev == nil || p.Prev.Page != 2 {
		t.Fatalf("page 3 of 25: %+v", p)
	}

	q.Page = 1
	if p := q.Pagination(5); p != nil {
		t.Fatalf("single page should have no pagination, got %+v", p)
	}
}

func TestReservedKeysNotFiltered(t *testing.T) {
	q := parseRawQuery(t, "page=2&limit=5&sort=title&fields=title", ReportDefaults)
	if len(q.Filter) != 0 {
		t.Fatalf("reserved keys leaked into filter: %v", q.Filter)
	}
	if q.Page != 2 || q.Limit != 5 {
		t.Fatalf("pagination params: page=%d limit=%d", q.Page, q.Limit)
	}
}
