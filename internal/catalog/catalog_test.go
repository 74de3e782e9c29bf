package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/catalog"
	"voicero/internal/testsupport"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Blue Hat", "blue hat"},
		{"collapses whitespace", "  Blue \t  Hat\n", "blue hat"},
		{"empty", "   ", ""},
		{"unicode", "ÉTÉ Dress", "été dress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, catalog.NormalizeTitle(tt.input))
		})
	}
}

func TestPriceIndexLookups(t *testing.T) {
	idx := catalog.NewPriceIndex([]catalog.Item{
		{ID: "gid://1", Handle: "Red-Shoe", Title: "Red Shoe", Price: 80},
		{ID: "2", Handle: "blue-hat", Title: "Blue  Hat", Price: 25},
		{ID: "3", Handle: "other-blue-hat", Title: "blue hat", Price: 99},
		{ID: "4", Handle: "broken", Title: "Broken", Price: -1},
	})

	t.Run("handle is case insensitive", func(t *testing.T) {
		price, ok := idx.ByHandle("red-shoe")
		require.True(t, ok)
		assert.Equal(t, 80.0, price)
	})

	t.Run("id is exact", func(t *testing.T) {
		price, ok := idx.ByID("gid://1")
		require.True(t, ok)
		assert.Equal(t, 80.0, price)

		_, ok = idx.ByID("GID://1")
		assert.False(t, ok)
	})

	t.Run("first title wins on collision", func(t *testing.T) {
		price, ok := idx.ByTitle("BLUE HAT")
		require.True(t, ok)
		assert.Equal(t, 25.0, price)
	})

	t.Run("negative prices are skipped", func(t *testing.T) {
		_, ok := idx.ByHandle("broken")
		assert.False(t, ok)
	})

	t.Run("nil index resolves nothing", func(t *testing.T) {
		var empty *catalog.PriceIndex
		_, ok := empty.ByHandle("red-shoe")
		assert.False(t, ok)
		assert.Equal(t, 0, empty.Len())
	})
}

func TestListItems(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "shop.example.com")
	other := testsupport.CreateTestWebsite(db, "other.example.com")

	testsupport.CreateProduct(t, db, website.ID, "red-shoe", "Red Shoe", 80)
	testsupport.CreateProduct(t, db, website.ID, "blue-hat", "Blue Hat", 25)
	testsupport.CreateProduct(t, db, other.ID, "green-scarf", "Green Scarf", 15)

	items, err := catalog.ListItems(t.Context(), db, website.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	handles := []string{items[0].Handle, items[1].Handle}
	assert.ElementsMatch(t, []string{"red-shoe", "blue-hat"}, handles)
}
