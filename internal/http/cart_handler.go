package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxQuantity = 99

type CartSessions interface {
	Session(ctx context.Context, sessionID string) (*cart.Store, error)
}

type CartHandler struct {
	carts CartSessions
}

func NewCartHandler(carts CartSessions) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func newCartResponse(c domain.Cart) CartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponse{Lines: lines, Total: c.Total(), Count: c.Count()}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "id is required")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	current := store.Cart()
	if i, found := current.Find(req.ID); found && current.Lines[i].Quantity >= maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c := store.AddItem(r.Context(), domain.MenuItem{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
	})
	respondJSON(w, http.StatusCreated, newCartResponse(c))
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if *req.Quantity < 0 || *req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	if _, found := store.Cart().Find(itemID); !found {
		respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(store.SetQuantity(r.Context(), itemID, *req.Quantity)))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.RemoveItem(r.Context(), itemID)))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Clear(r.Context())))
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return nil, false
	}
	store, err := h.carts.Session(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return nil, false
	}
	return store, true
}
