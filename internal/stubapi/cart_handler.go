package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.store.Cart(userID))
}

type addCartItemRequest struct {
	ProductID       int64                   `json:"productId"`
	Quantity        int                     `json:"quantity"`
	SelectedOptions []domain.SelectedOption `json:"selectedOptions"`
	Note            string                  `json:"note"`
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	// A replayed mutation (same idempotency key) returns the current cart
	// without applying twice.
	if s.store.SeenIdempotencyKey(r.Header.Get("X-Idempotency-Key")) {
		respondJSON(w, http.StatusOK, s.store.Cart(userID))
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "productId must be positive")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
		return
	}
	if err := domain.ValidateNote(req.Note); err != nil {
		respondError(w, http.StatusBadRequest, "note exceeds 100 characters")
		return
	}

	cart, err := s.store.AddCartItem(userID, req.ProductID, req.Quantity, req.SelectedOptions, req.Note)
	if err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

type updateCartItemRequest struct {
	Quantity        int                     `json:"quantity"`
	SelectedOptions []domain.SelectedOption `json:"selectedOptions"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "item id must be a positive integer")
		return
	}

	if s.store.SeenIdempotencyKey(r.Header.Get("X-Idempotency-Key")) {
		respondJSON(w, http.StatusOK, s.store.Cart(userID))
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
		return
	}

	cart, err := s.store.UpdateCartItem(userID, itemID, req.Quantity, req.SelectedOptions)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "cart item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "item id must be a positive integer")
		return
	}

	if s.store.SeenIdempotencyKey(r.Header.Get("X-Idempotency-Key")) {
		respondJSON(w, http.StatusOK, s.store.Cart(userID))
		return
	}

	cart, err := s.store.RemoveCartItem(userID, itemID)
	if err != nil {
		respondError(w, http.StatusNotFound, "cart item not found")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}
