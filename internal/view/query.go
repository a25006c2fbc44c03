package view

import (
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"philately/catalog/internal/domain"
)

// rawQuery is the wire shape of a shareable view URL. Path and grouping are
// comma-joined lists; every unset parameter is omitted from the URL entirely.
type rawQuery struct {
	Path        string `schema:"path,omitempty"`
	Search      string `schema:"search,omitempty"`
	GroupSearch string `schema:"groupSearch,omitempty"`
	View        string `schema:"view,omitempty"`
	Grouping    string `schema:"grouping,omitempty"`
}

// Query is the decoded, validated view state carried by a shareable URL.
// Path, search terms and grouping levels round-trip through Encode/Decode so
// a shared link reproduces the same view.
type Query struct {
	Path        []string
	Search      string
	GroupSearch string
	View        string
	Levels      []domain.GroupingField
}

var (
	queryDecoder = newQueryDecoder()
	queryEncoder = schema.NewEncoder()
)

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeQuery parses URL query parameters into a Query. Unknown grouping
// values are silently dropped rather than causing an error, so links from
// older builds keep working.
func DecodeQuery(values url.Values) (Query, error) {
	var raw rawQuery
	if err := queryDecoder.Decode(&raw, values); err != nil {
		return Query{}, err
	}

	q := Query{
		Search:      raw.Search,
		GroupSearch: raw.GroupSearch,
		View:        raw.View,
	}

	for _, segment := range splitList(raw.Path) {
		if unescaped, err := url.QueryUnescape(segment); err == nil {
			segment = unescaped
		}
		q.Path = append(q.Path, segment)
	}

	for _, name := range splitList(raw.Grouping) {
		if field, ok := domain.ParseGroupingField(name); ok {
			q.Levels = append(q.Levels, field)
		}
	}
	return q, nil
}

// Encode serializes the query back into URL parameters, omitting anything
// unset.
func (q Query) Encode() (url.Values, error) {
	escaped := make([]string, 0, len(q.Path))
	for _, segment := range q.Path {
		escaped = append(escaped, url.QueryEscape(segment))
	}

	names := make([]string, 0, len(q.Levels))
	for _, level := range q.Levels {
		names = append(names, level.String())
	}

	raw := rawQuery{
		Path:        strings.Join(escaped, ","),
		Search:      q.Search,
		GroupSearch: q.GroupSearch,
		View:        q.View,
		Grouping:    strings.Join(names, ","),
	}

	values := url.Values{}
	if err := queryEncoder.Encode(raw, values); err != nil {
		return nil, err
	}
	// Unset parameters must be absent from the URL, not present-but-empty.
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			delete(values, key)
		}
	}
	return values, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
