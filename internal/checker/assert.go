package checker

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ServiceInfo is what the liveness check reads from GET /.
type ServiceInfo struct {
	Service   string
	Status    string
	Endpoints []string
}

// Recommendation is one element of a recommendations array. ID is empty when the
// service sends neither club_id nor id.
type Recommendation struct {
	ID    string
	Name  string
	Score float64
}

// ClubRef is one element of a category listing.
type ClubRef struct {
	ID       string
	Name     string
	Category string
}

func expectStatus(resp *Response, want int) error {
	if resp.StatusCode != want {
		return contractErr(resp.Endpoint, "", "expected status %d, got %d", want, resp.StatusCode)
	}
	return nil
}

func parseBody(resp *Response) (gjson.Result, error) {
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, contractErr(resp.Endpoint, "", "body is not valid JSON: %s", snippet(resp.Body))
	}
	return gjson.ParseBytes(resp.Body), nil
}

func expectObject(resp *Response, doc gjson.Result) error {
	if !doc.IsObject() {
		return contractErr(resp.Endpoint, "", "expected a JSON object, got %s", kind(doc))
	}
	return nil
}

// expectString reads key from doc; prefix only qualifies the reported field.
func expectString(resp *Response, doc gjson.Result, prefix, key string) (string, error) {
	path := joinPath(prefix, key)
	v := doc.Get(key)
	if !v.Exists() {
		return "", contractErr(resp.Endpoint, path, "missing")
	}
	if v.Type != gjson.String {
		return "", contractErr(resp.Endpoint, path, "expected string, got %s", kind(v))
	}
	return v.String(), nil
}

func expectNumber(resp *Response, doc gjson.Result, prefix, key string) (float64, error) {
	path := joinPath(prefix, key)
	v := doc.Get(key)
	if !v.Exists() {
		return 0, contractErr(resp.Endpoint, path, "missing")
	}
	if v.Type != gjson.Number {
		return 0, contractErr(resp.Endpoint, path, "expected number, got %s", kind(v))
	}
	return v.Float(), nil
}

func expectArray(resp *Response, doc gjson.Result, path string) ([]gjson.Result, error) {
	v := doc
	if path != "" {
		v = doc.Get(path)
		if !v.Exists() {
			return nil, contractErr(resp.Endpoint, path, "missing")
		}
	}
	if !v.IsArray() {
		return nil, contractErr(resp.Endpoint, path, "expected array, got %s", kind(v))
	}
	return v.Array(), nil
}

// checkServiceInfo validates GET / : {service, status, endpoints:[string]}.
func checkServiceInfo(resp *Response) (*ServiceInfo, error) {
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	doc, err := parseBody(resp)
	if err != nil {
		return nil, err
	}
	if err := expectObject(resp, doc); err != nil {
		return nil, err
	}

	info := &ServiceInfo{}
	if info.Service, err = expectString(resp, doc, "", "service"); err != nil {
		return nil, err
	}
	if info.Status, err = expectString(resp, doc, "", "status"); err != nil {
		return nil, err
	}
	endpoints, err := expectArray(resp, doc, "endpoints")
	if err != nil {
		return nil, err
	}
	for i, e := range endpoints {
		if e.Type != gjson.String {
			return nil, contractErr(resp.Endpoint, fmt.Sprintf("endpoints.%d", i), "expected string, got %s", kind(e))
		}
		info.Endpoints = append(info.Endpoints, e.String())
	}
	return info, nil
}

// checkRecommendations validates a 200 body holding a recommendations array whose
// elements carry a string club_name and a numeric match_score.
func checkRecommendations(resp *Response) ([]Recommendation, error) {
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	doc, err := parseBody(resp)
	if err != nil {
		return nil, err
	}
	if err := expectObject(resp, doc); err != nil {
		return nil, err
	}
	items, err := expectArray(resp, doc, "recommendations")
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("recommendations.%d", i)
		if !item.IsObject() {
			return nil, contractErr(resp.Endpoint, prefix, "expected object, got %s", kind(item))
		}
		name, err := expectString(resp, item, prefix, "club_name")
		if err != nil {
			return nil, err
		}
		score, err := expectNumber(resp, item, prefix, "match_score")
		if err != nil {
			return nil, err
		}
		recs = append(recs, Recommendation{ID: identifier(item, "club_id", "id"), Name: name, Score: score})
	}
	return recs, nil
}

// checkClubList validates a 200 body that is an array of club records with a string name.
func checkClubList(resp *Response) ([]ClubRef, error) {
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	doc, err := parseBody(resp)
	if err != nil {
		return nil, err
	}
	items, err := expectArray(resp, doc, "")
	if err != nil {
		return nil, err
	}

	clubs := make([]ClubRef, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprint(i)
		if !item.IsObject() {
			return nil, contractErr(resp.Endpoint, prefix, "expected object, got %s", kind(item))
		}
		name, err := expectString(resp, item, prefix, "name")
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, ClubRef{
			ID:       identifier(item, "id", "club_id"),
			Name:     name,
			Category: item.Get("category").String(),
		})
	}
	return clubs, nil
}

// checkErrorDetail validates a rejected request: any non-200 status plus a detail field.
func checkErrorDetail(resp *Response) error {
	if resp.StatusCode == http.StatusOK {
		return contractErr(resp.Endpoint, "", "expected a non-200 status, got 200")
	}
	doc, err := parseBody(resp)
	if err != nil {
		return err
	}
	if !doc.Get("detail").Exists() {
		return contractErr(resp.Endpoint, "detail", "missing from error response")
	}
	return nil
}

// expectExcluded fails when any recommendation carries one of ids.
func expectExcluded(resp *Response, recs []Recommendation, ids ...string) error {
	excluded := make(map[string]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}
	for i, rec := range recs {
		if rec.ID != "" && excluded[rec.ID] {
			return contractErr(resp.Endpoint, fmt.Sprintf("recommendations.%d", i),
				"favorited club %q must not be recommended", rec.ID)
		}
	}
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func identifier(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func kind(v gjson.Result) string {
	switch {
	case !v.Exists():
		return "nothing"
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	}
	switch v.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	}
	return v.Type.String()
}

func snippet(body []byte) string {
	const maxLen = 120
	if len(body) > maxLen {
		return fmt.Sprintf("%q...", body[:maxLen])
	}
	return fmt.Sprintf("%q", body)
}
