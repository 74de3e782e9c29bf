package redirects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/redirects"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"absolute url keeps path", "https://shop.com/products/red-shoe/", "/products/red-shoe"},
		{"drops query", "https://shop.com/collections/summer?page=2#top", "/collections/summer"},
		{"relative without slash", "products/red-shoe", "/products/red-shoe"},
		{"collapses leading slashes", "//pages/about", "/pages/about"},
		{"strips trailing dot", "/blogs/news/launch.", "/blogs/news/launch"},
		{"root", "https://shop.com", "/"},
		{"already normalized", "/products/foo", "/products/foo"},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redirects.NormalizePath(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, redirects.NormalizePath(got), "normalizing twice must not change the result")
		})
	}
}

func TestNormalizePathIsFixedPoint(t *testing.T) {
	inputs := []string{
		"/products/foo//", "https://x.io/a/b/./", "pages", "/", "..", "http://h/p?x", "/blogs/a/b.",
	}
	for _, in := range inputs {
		once := redirects.NormalizePath(in)
		assert.Equal(t, once, redirects.NormalizePath(once), in)
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		path        string
		contentType redirects.ContentType
		handle      string
		ok          bool
	}{
		{"/products/red-shoe", redirects.ContentProducts, "red-shoe", true},
		{"/product/red-shoe/variant", redirects.ContentProducts, "red-shoe", true},
		{"/Collections/summer", redirects.ContentCollections, "summer", true},
		{"/blogs/news/launch-day", redirects.ContentBlogs, "launch-day", true},
		{"/blog/news", redirects.ContentBlogs, "news", true},
		{"/pages/about", redirects.ContentPages, "about", true},
		{"/products", "", "", false},
		{"/cart/checkout", "", "", false},
		{"/", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			contentType, handle, ok := redirects.Bucket(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.contentType, contentType)
			assert.Equal(t, tt.handle, handle)
		})
	}
}

func TestTallyCountsOneRedirectPerThread(t *testing.T) {
	tally := redirects.NewTally()

	assert.True(t, tally.Record("ai_thread:1", "https://shop.com/products/red-shoe/"))
	assert.False(t, tally.Record("ai_thread:1", "/collections/summer"))
	assert.True(t, tally.Record("ai_thread:2", "/products/red-shoe"))
	assert.False(t, tally.Record("ai_thread:3", "  "))
	assert.True(t, tally.Record("ai_thread:3", "/cart"))

	assert.Equal(t, 3, tally.Total())

	summary := tally.Summary()
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[string]int{"/products/red-shoe": 2, "/collections/summer": 1, "/cart": 1}, summary.ByPath)
	assert.Equal(t, map[string]int{"red-shoe": 2}, summary.Products)
	assert.Equal(t, map[string]int{"summer": 1}, summary.Collections)
	assert.Empty(t, summary.Blogs)
	assert.NotNil(t, summary.Pages)

	require.Len(t, summary.Top, 3)
	assert.Equal(t, redirects.PathCount{Path: "/products/red-shoe", Count: 2}, summary.Top[0])
	assert.Equal(t, "/cart", summary.Top[1].Path)
}
