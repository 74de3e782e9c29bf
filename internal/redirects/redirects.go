// Package redirects normalizes assistant redirect destinations and keeps the
// per-scope redirect tallies.
package redirects

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// ContentType is the kind of page a redirect points at.
type ContentType string

const (
	ContentProducts    ContentType = "products"
	ContentCollections ContentType = "collections"
	ContentBlogs       ContentType = "blogs"
	ContentPages       ContentType = "pages"
)

var contentAliases = map[string]ContentType{
	"product":     ContentProducts,
	"products":    ContentProducts,
	"collection":  ContentCollections,
	"collections": ContentCollections,
	"blog":        ContentBlogs,
	"blogs":       ContentBlogs,
	"page":        ContentPages,
	"pages":       ContentPages,
}

// NormalizePath reduces a redirect destination to a site path. Absolute URLs
// keep only their path; query strings and fragments are dropped, trailing
// "/" and "." are stripped and the result has exactly one leading "/".
// NormalizePath is idempotent. Blank input yields "".
func NormalizePath(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || unicode.IsSpace(r)
	})
	return "/" + strings.TrimLeft(s, "/")
}

// Bucket classifies a normalized path. The first segment selects the content
// type. Blog posts live at /blogs/{blog}/{post}, so blogs use the last segment
// as handle; the other types use the second.
func Bucket(path string) (ContentType, string, bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return "", "", false
	}

	contentType, ok := contentAliases[strings.ToLower(segments[0])]
	if !ok {
		return "", "", false
	}

	if contentType == ContentBlogs {
		return contentType, segments[len(segments)-1], true
	}
	return contentType, segments[1], true
}

// Tally accumulates redirects for one scope. The total counts at most one
// redirect per thread, while the per-path and per-type counters count every
// redirect.
type Tally struct {
	total   int
	counted map[string]struct{}
	byPath  map[string]int
	byType  map[ContentType]map[string]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		counted: make(map[string]struct{}),
		byPath:  make(map[string]int),
		byType: map[ContentType]map[string]int{
			ContentProducts:    {},
			ContentCollections: {},
			ContentBlogs:       {},
			ContentPages:       {},
		},
	}
}

// Record counts a redirect of the thread identified by threadKey. It reports
// whether the redirect was the first of its thread, and so raised the total.
func (t *Tally) Record(threadKey, rawURL string) bool {
	path := NormalizePath(rawURL)
	if path == "" {
		return false
	}

	t.byPath[path]++
	if contentType, handle, ok := Bucket(path); ok {
		t.byType[contentType][handle]++
	}

	if _, seen := t.counted[threadKey]; seen {
		return false
	}
	t.counted[threadKey] = struct{}{}
	t.total++
	return true
}

// Total returns the number of threads with at least one redirect.
func (t *Tally) Total() int {
	return t.total
}

// PathCount is one row of a redirect frequency table.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Summary is the serialisable form of a Tally.
type Summary struct {
	Total       int            `json:"total"`
	Top         []PathCount    `json:"top"`
	ByPath      map[string]int `json:"byPath"`
	Products    map[string]int `json:"products"`
	Collections map[string]int `json:"collections"`
	Blogs       map[string]int `json:"blogs"`
	Pages       map[string]int `json:"pages"`
}

// topLimit caps the Top list of a Summary.
const topLimit = 10

// Summary copies the tally into a Summary.
func (t *Tally) Summary() Summary {
	return Summary{
		Total:       t.total,
		Top:         t.Top(topLimit),
		ByPath:      copyCounts(t.byPath),
		Products:    copyCounts(t.byType[ContentProducts]),
		Collections: copyCounts(t.byType[ContentCollections]),
		Blogs:       copyCounts(t.byType[ContentBlogs]),
		Pages:       copyCounts(t.byType[ContentPages]),
	}
}

// Top returns the n most frequent paths, ties broken by path.
func (t *Tally) Top(n int) []PathCount {
	rows := make([]PathCount, 0, len(t.byPath))
	for path, count := range t.byPath {
		rows = append(rows, PathCount{Path: path, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Path < rows[j].Path
	})
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
