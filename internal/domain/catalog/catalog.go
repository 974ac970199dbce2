// internal/domain/catalog/catalog.go
package catalog

import "context"

// Fallback display values for cart rows whose product or variant no
// longer resolves in the catalog. Rows are hydrated with these instead
// of being dropped or turned into errors.
const (
	FallbackCategory = "General"
	FallbackImageID  = "placeholder"
)

// Product is the read-only slice of catalog data the cart consumes.
// CollectionTitle doubles as the cart item's category label.
type Product struct {
	ID              string
	Name            string
	CollectionTitle string
}

// Variant is a purchasable configuration (size/SKU) of a product.
type Variant struct {
	ID        string
	ProductID string
	Title     string
	ImageID   string
	Price     float64
	Stock     int
}

// Reader supplies batch lookup indices for hydrating cart line items.
// Missing ids are simply absent from the returned map (not an error).
type Reader interface {
	ProductIndex(ctx context.Context, productIDs []string) (map[string]Product, error)
	VariantIndex(ctx context.Context, variantIDs []string) (map[string]Variant, error)
}

// ImageResolver turns a stored image id into a servable URL.
// Implementations must return a usable placeholder URL for empty or
// unknown ids rather than an empty string.
type ImageResolver interface {
	ResolveURL(imageID string) string
}
