// internal/adapters/out/gcs/product_image_resolver.go
package gcs

import (
	"fmt"
	"strings"
)

const defaultProductImageBucket = "agrimart-product-images"

// defaultPlaceholderObject is served whenever an image id is empty or the
// stored value cannot be interpreted; cart rows never render without an
// image URL.
const defaultPlaceholderObject = "placeholder.png"

// ProductImageResolver resolves a stored image id into a public URL.
//
// imageID can be:
// - http(s)://... (returned as-is)
// - an object path within the configured bucket
// - empty (resolved to the placeholder object)
type ProductImageResolver struct {
	Bucket string
}

func NewProductImageResolver(bucket string) *ProductImageResolver {
	return &ProductImageResolver{Bucket: strings.TrimSpace(bucket)}
}

func (r *ProductImageResolver) ResolveURL(imageID string) string {
	b := ""
	if r != nil {
		b = strings.TrimSpace(r.Bucket)
	}
	if b == "" {
		b = defaultProductImageBucket
	}

	p := strings.TrimSpace(imageID)
	if p == "" {
		p = defaultPlaceholderObject
	}

	// already absolute URL
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}

	p = strings.TrimLeft(p, "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, p)
}
