// internal/adapters/out/firestore/catalog_reader_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	catalogdom "agrimart/internal/domain/catalog"
)

// CatalogReaderFS implements catalog.Reader on Firestore.
//
// Collection design:
// - products:    {name, collectionId}
// - collections: {title}
// - variants:    {productId, title, imageId, price, stock}
//
// Reads are batch GetAll by document ref; missing docs are skipped, not
// errored, because cart hydration substitutes fallback display values.
type CatalogReaderFS struct {
	Client *firestore.Client

	ProductsCol    string
	CollectionsCol string
	VariantsCol    string
}

func NewCatalogReaderFS(client *firestore.Client) *CatalogReaderFS {
	return &CatalogReaderFS{
		Client:         client,
		ProductsCol:    "products",
		CollectionsCol: "collections",
		VariantsCol:    "variants",
	}
}

type productDoc struct {
	Name         string `firestore:"name"`
	CollectionID string `firestore:"collectionId"`
}

type collectionDoc struct {
	Title string `firestore:"title"`
}

type variantDoc struct {
	ProductID string  `firestore:"productId"`
	Title     string  `firestore:"title"`
	ImageID   string  `firestore:"imageId"`
	Price     float64 `firestore:"price"`
	Stock     int     `firestore:"stock"`
}

// ProductIndex returns productID -> Product for the ids that resolve.
func (r *CatalogReaderFS) ProductIndex(ctx context.Context, productIDs []string) (map[string]catalogdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("catalog_reader_fs: firestore client is nil")
	}

	refs := r.refs(r.ProductsCol, "products", productIDs)
	if len(refs) == 0 {
		return map[string]catalogdom.Product{}, nil
	}

	snaps, err := r.Client.GetAll(ctx, refs)
	if err != nil {
		// NotFound means the catalog has no such documents, not an outage
		if status.Code(err) == codes.NotFound {
			return map[string]catalogdom.Product{}, nil
		}
		return nil, err
	}

	out := map[string]catalogdom.Product{}
	collectionIDs := make([]string, 0, len(snaps))
	seen := map[string]struct{}{}

	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		var d productDoc
		if err := snap.DataTo(&d); err != nil {
			log.Printf("[catalog_reader_fs] product %s: decode skipped: %v", snap.Ref.ID, err)
			continue
		}
		out[snap.Ref.ID] = catalogdom.Product{
			ID:   snap.Ref.ID,
			Name: strings.TrimSpace(d.Name),
		}
		cid := strings.TrimSpace(d.CollectionID)
		if cid != "" {
			if _, ok := seen[cid]; !ok {
				seen[cid] = struct{}{}
				collectionIDs = append(collectionIDs, cid)
			}
		}
	}

	// Second hop: collection titles become the cart item's category label.
	titles := r.collectionTitles(ctx, collectionIDs)
	if len(titles) > 0 {
		for _, snap := range snaps {
			if snap == nil || !snap.Exists() {
				continue
			}
			var d productDoc
			if err := snap.DataTo(&d); err != nil {
				continue
			}
			p, ok := out[snap.Ref.ID]
			if !ok {
				continue
			}
			if title, ok := titles[strings.TrimSpace(d.CollectionID)]; ok {
				p.CollectionTitle = title
				out[snap.Ref.ID] = p
			}
		}
	}

	return out, nil
}

func (r *CatalogReaderFS) collectionTitles(ctx context.Context, collectionIDs []string) map[string]string {
	refs := r.refs(r.CollectionsCol, "collections", collectionIDs)
	if len(refs) == 0 {
		return nil
	}

	snaps, err := r.Client.GetAll(ctx, refs)
	if err != nil {
		// best-effort: hydration falls back to the default category label
		log.Printf("[catalog_reader_fs] collections GetAll failed: %v", err)
		return nil
	}

	out := map[string]string{}
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		var d collectionDoc
		if err := snap.DataTo(&d); err != nil {
			continue
		}
		if title := strings.TrimSpace(d.Title); title != "" {
			out[snap.Ref.ID] = title
		}
	}
	return out
}

// VariantIndex returns variantID -> Variant for the ids that resolve.
func (r *CatalogReaderFS) VariantIndex(ctx context.Context, variantIDs []string) (map[string]catalogdom.Variant, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("catalog_reader_fs: firestore client is nil")
	}

	refs := r.refs(r.VariantsCol, "variants", variantIDs)
	if len(refs) == 0 {
		return map[string]catalogdom.Variant{}, nil
	}

	snaps, err := r.Client.GetAll(ctx, refs)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return map[string]catalogdom.Variant{}, nil
		}
		return nil, err
	}

	out := map[string]catalogdom.Variant{}
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		var d variantDoc
		if err := snap.DataTo(&d); err != nil {
			log.Printf("[catalog_reader_fs] variant %s: decode skipped: %v", snap.Ref.ID, err)
			continue
		}
		out[snap.Ref.ID] = catalogdom.Variant{
			ID:        snap.Ref.ID,
			ProductID: strings.TrimSpace(d.ProductID),
			Title:     strings.TrimSpace(d.Title),
			ImageID:   strings.TrimSpace(d.ImageID),
			Price:     d.Price,
			Stock:     d.Stock,
		}
	}
	return out, nil
}

func (r *CatalogReaderFS) refs(col, fallback string, ids []string) []*firestore.DocumentRef {
	c := strings.TrimSpace(col)
	if c == "" {
		c = fallback
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id0 := range ids {
		id := strings.TrimSpace(id0)
		if id == "" {
			continue
		}
		refs = append(refs, r.Client.Collection(c).Doc(id))
	}
	return refs
}

var _ catalogdom.Reader = (*CatalogReaderFS)(nil)
