package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turnpage/turnpage/internal/cms"
	"github.com/turnpage/turnpage/internal/middleware"
	"github.com/turnpage/turnpage/internal/shop"
)

// ShopHandlers holds dependencies for the merch store HTTP handlers.
type ShopHandlers struct {
	products shop.ProductRepository
	carts    shop.CartRepository
	checkout *shop.CheckoutService // Optional, can be nil when Stripe is not configured
}

// NewShopHandlers creates a new ShopHandlers instance.
// checkout is optional and can be nil; the checkout endpoint then reports
// the store as unavailable.
func NewShopHandlers(products shop.ProductRepository, carts shop.CartRepository, checkout *shop.CheckoutService) *ShopHandlers {
	return &ShopHandlers{
		products: products,
		carts:    carts,
		checkout: checkout,
	}
}

// AddToCartRequest represents the request body for adding a product to
// the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest represents the request body for changing a line
// item's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutResponse carries the hosted payment page URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ListProducts handles GET /products - the merchandise catalog.
func (h *ShopHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list products", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load products")
		return
	}

	writeJSON(w, r, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}.
func (h *ShopHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Product not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get product", "error", err, "product_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load product")
		return
	}

	writeJSON(w, r, http.StatusOK, p)
}

// GetCart handles GET /cart - the authenticated member's cart.
func (h *ShopHandlers) GetCart(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	cart, err := h.carts.Get(r.Context(), memberID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load cart")
		return
	}

	writeJSON(w, r, http.StatusOK, cart)
}

// AddToCart handles POST /cart - adds a product to the member's cart.
// Adding an existing product merges quantities.
func (h *ShopHandlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if req.ProductID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "product_id is required")
		return
	}

	p, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Product not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get product", "error", err, "product_id", req.ProductID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load product")
		return
	}

	cart, err := h.carts.Get(r.Context(), memberID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load cart")
		return
	}

	cart.Add(shop.LineForProduct(*p, req.Quantity))

	if err := h.carts.Set(r.Context(), memberID, cart); err != nil {
		slog.ErrorContext(r.Context(), "failed to save cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to save cart")
		return
	}

	writeJSON(w, r, http.StatusOK, cart)
}

// UpdateCartItem handles PATCH /cart/{product_id} - sets a line item's
// quantity. Quantities below one are clamped to one.
func (h *ShopHandlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	cart, err := h.carts.Get(r.Context(), memberID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load cart")
		return
	}

	if !cart.SetQuantity(productID, req.Quantity) {
		fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Product not in cart")
		return
	}

	if err := h.carts.Set(r.Context(), memberID, cart); err != nil {
		slog.ErrorContext(r.Context(), "failed to save cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to save cart")
		return
	}

	writeJSON(w, r, http.StatusOK, cart)
}

// RemoveCartItem handles DELETE /cart/{product_id}.
func (h *ShopHandlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	productID := chi.URLParam(r, "product_id")

	cart, err := h.carts.Get(r.Context(), memberID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load cart")
		return
	}

	if !cart.RemoveItem(productID) {
		fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Product not in cart")
		return
	}

	if err := h.carts.Set(r.Context(), memberID, cart); err != nil {
		slog.ErrorContext(r.Context(), "failed to save cart", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to save cart")
		return
	}

	writeJSON(w, r, http.StatusOK, cart)
}

// Checkout handles POST /checkout - turns the member's cart into a
// hosted Stripe Checkout session and returns its URL. The cart is kept
// until payment confirmation arrives out of band.
func (h *ShopHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.checkout == nil {
		fail(w, r, http.StatusServiceUnavailable, ErrCodeInternal, "The store is not available")
		return
	}

	memberID := middleware.GetMemberID(r.Context())

	url, err := h.checkout.Checkout(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, shop.ErrEmptyCart) {
			fail(w, r, http.StatusBadRequest, ErrCodeEmptyCart, "Your cart is empty")
			return
		}
		slog.ErrorContext(r.Context(), "checkout failed", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to start checkout")
		return
	}

	writeJSON(w, r, http.StatusOK, CheckoutResponse{URL: url})
}
