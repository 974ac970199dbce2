// internal/adapters/in/http/storefront/handler/cart_handler.go
package storefrontHandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"agrimart/internal/adapters/in/http/middleware"
	usecase "agrimart/internal/application/usecase"
	cartdom "agrimart/internal/domain/cart"
)

// CartHandler serves the storefront cart endpoints.
//
// Routes (suffix-matched so the handler works under any mount prefix):
//
//	GET    .../cart        current cart view
//	DELETE .../cart        clear cart
//	POST   .../cart/items  add item (catalog snapshot in body)
//	PUT    .../cart/items  update quantity
//	DELETE .../cart/items  remove item
//	POST   .../cart/sync   merge guest cart into the remote cart
//
// All mutating endpoints answer 200 with the cart view; operation
// outcomes travel through the notification sink, mirroring the
// fire-and-forget facade contract.
type CartHandler struct {
	registry *usecase.CartSessionRegistry
}

func NewCartHandler(registry *usecase.CartSessionRegistry) http.Handler {
	return &CartHandler{registry: registry}
}

type cartViewDTO struct {
	Items     []cartItemDTO `json:"items"`
	IsLoading bool          `json:"isLoading"`
	Count     int           `json:"count"`
	Total     float64       `json:"total"`
}

type cartItemDTO struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	IsLocal   bool    `json:"isLocal,omitempty"`
}

type addItemReq struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

type updateItemReq struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type removeItemReq struct {
	ID string `json:"id"`
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	if h.registry == nil {
		log.Printf("[store_cart_handler] exit status=500 reason=registry is nil elapsed=%s", time.Since(start))
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	facade, ok := h.resolveFacade(w, r)
	if !ok {
		return
	}

	isGET := r.Method == http.MethodGet
	isPOST := r.Method == http.MethodPost
	isPUT := r.Method == http.MethodPut
	isDEL := r.Method == http.MethodDelete

	switch {
	case isGET && strings.HasSuffix(path, "/cart"):
		h.handleGet(w, facade)
	case isDEL && strings.HasSuffix(path, "/cart"):
		facade.ClearCart(r.Context())
		h.handleGet(w, facade)
	case isPOST && strings.HasSuffix(path, "/cart/items"):
		h.handleAddItem(w, r, facade)
	case isPUT && strings.HasSuffix(path, "/cart/items"):
		h.handleUpdateItem(w, r, facade)
	case isDEL && strings.HasSuffix(path, "/cart/items"):
		h.handleRemoveItem(w, r, facade)
	case isPOST && strings.HasSuffix(path, "/cart/sync"):
		facade.SyncCartWithDatabase(r.Context())
		h.handleGet(w, facade)
	default:
		log.Printf("[store_cart_handler] exit status=404 method=%s path=%q elapsed=%s", r.Method, path, time.Since(start))
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) resolveFacade(w http.ResponseWriter, r *http.Request) (*usecase.CartFacade, bool) {
	ctx := r.Context()
	deviceID := middleware.DeviceIDFromContext(ctx)
	sess := middleware.SessionFromContext(ctx)

	facade, err := h.registry.Resolve(ctx, deviceID, sess)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidDeviceID) {
			writeErr(w, http.StatusBadRequest, "invalid X-Device-Id")
			return nil, false
		}
		log.Printf("[store_cart_handler] resolve failed deviceId=%q: %v", deviceID, err)
		writeErr(w, http.StatusInternalServerError, "cart session unavailable")
		return nil, false
	}
	return facade, true
}

func (h *CartHandler) handleGet(w http.ResponseWriter, facade *usecase.CartFacade) {
	writeJSON(w, http.StatusOK, toCartView(facade))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request, facade *usecase.CartFacade) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" || strings.TrimSpace(req.VariantID) == "" || req.Quantity < 1 {
		writeErr(w, http.StatusBadRequest, "productId, variantId and quantity >= 1 are required")
		return
	}

	facade.AddToCart(r.Context(), cartdom.CartItem{
		ProductID: strings.TrimSpace(req.ProductID),
		VariantID: strings.TrimSpace(req.VariantID),
		Name:      strings.TrimSpace(req.Name),
		Image:     strings.TrimSpace(req.Image),
		Category:  strings.TrimSpace(req.Category),
		Price:     req.Price,
		Quantity:  req.Quantity,
		Stock:     req.Stock,
	})
	h.handleGet(w, facade)
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request, facade *usecase.CartFacade) {
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeErr(w, http.StatusBadRequest, "id is required")
		return
	}

	facade.UpdateQuantity(r.Context(), strings.TrimSpace(req.ID), req.Quantity)
	h.handleGet(w, facade)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request, facade *usecase.CartFacade) {
	// id from query first, body as fallback
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		var req removeItemReq
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			id = strings.TrimSpace(req.ID)
		}
	}
	if id == "" {
		writeErr(w, http.StatusBadRequest, "id is required")
		return
	}

	facade.RemoveFromCart(r.Context(), id)
	h.handleGet(w, facade)
}

func toCartView(facade *usecase.CartFacade) cartViewDTO {
	items := facade.CartItems()
	out := cartViewDTO{
		Items:     make([]cartItemDTO, 0, len(items)),
		IsLoading: facade.IsLoading(),
		Count:     cartdom.Count(items),
		Total:     cartdom.Total(items),
	}
	for _, it := range items {
		out.Items = append(out.Items, cartItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Image:     it.Image,
			Category:  it.Category,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Stock:     it.Stock,
			IsLocal:   it.IsLocal,
		})
	}
	return out
}

// ------------------------
// shared helpers
// ------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}
