// Package purchases attributes detected purchase and cart-add events to
// catalog items and rolls them up into a revenue estimate.
package purchases

import "strings"

// UnknownKey is recorded when a purchase event carries no usable identifier.
const UnknownKey = "unknown"

// Ref is the set of identifiers extracted from a purchase event. Any subset
// may be empty.
type Ref struct {
	URL         string `json:"url,omitempty"`
	Handle      string `json:"handle,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

// Key returns the attribution key: handle, then product id, then product
// name, then url, then UnknownKey.
func (r Ref) Key() string {
	for _, candidate := range []string{r.Handle, r.ProductID, r.ProductName, r.URL} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return UnknownKey
}

// IsZero reports whether no identifier was extracted.
func (r Ref) IsZero() bool {
	return r.Key() == UnknownKey
}
