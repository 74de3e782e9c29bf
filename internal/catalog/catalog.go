// Package catalog stores the priced products of a website and builds the
// lookup tables used to turn purchase keys into revenue.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Product is a catalog row synced from the connected store.
type Product struct {
	ID        string  `gorm:"primaryKey;size:64"`
	WebsiteID uint    `gorm:"index;not null"`
	Handle    string  `gorm:"index;size:255"`
	Title     string  `gorm:"size:512"`
	Price     float64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is the read-only view of a product the engine works with.
type Item struct {
	ID     string  `json:"id"`
	Handle string  `json:"handle"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// ListItems returns the catalog of a website ordered by creation so that
// lookup collisions resolve the same way on every run.
func ListItems(ctx context.Context, db *gorm.DB, websiteID uint) ([]Item, error) {
	var products []Product
	err := db.WithContext(ctx).
		Where("website_id = ?", websiteID).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog for website %d: %w", websiteID, err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, Item{ID: p.ID, Handle: p.Handle, Title: p.Title, Price: p.Price})
	}
	return items, nil
}

// PriceIndex holds the three price lookup tables for one scope.
// The zero value is an empty index.
type PriceIndex struct {
	byHandle map[string]float64
	byID     map[string]float64
	byTitle  map[string]float64
}

// NewPriceIndex builds the handle, id and title tables. When two items share a
// key the first one wins. Items with a negative price are skipped.
func NewPriceIndex(items []Item) *PriceIndex {
	idx := &PriceIndex{
		byHandle: make(map[string]float64, len(items)),
		byID:     make(map[string]float64, len(items)),
		byTitle:  make(map[string]float64, len(items)),
	}
	for _, item := range items {
		if item.Price < 0 {
			continue
		}
		putFirst(idx.byHandle, strings.ToLower(strings.TrimSpace(item.Handle)), item.Price)
		putFirst(idx.byID, strings.TrimSpace(item.ID), item.Price)
		putFirst(idx.byTitle, NormalizeTitle(item.Title), item.Price)
	}
	return idx
}

func putFirst(table map[string]float64, key string, price float64) {
	if key == "" {
		return
	}
	if _, exists := table[key]; !exists {
		table[key] = price
	}
}

// ByHandle looks a handle up case-insensitively.
func (p *PriceIndex) ByHandle(handle string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	price, ok := p.byHandle[strings.ToLower(strings.TrimSpace(handle))]
	return price, ok
}

// ByID looks a product id up exactly.
func (p *PriceIndex) ByID(id string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	price, ok := p.byID[strings.TrimSpace(id)]
	return price, ok
}

// ByTitle looks a product title up after NormalizeTitle.
func (p *PriceIndex) ByTitle(title string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	price, ok := p.byTitle[NormalizeTitle(title)]
	return price, ok
}

// Len returns the number of distinct handles in the index.
func (p *PriceIndex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byHandle)
}

// NormalizeTitle lowercases a title and collapses runs of whitespace.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(cases.Lower(language.Und).String(title)), " ")
}
