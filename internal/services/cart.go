package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/Diwwy20/pp-food-client/internal/authclient"
	"github.com/Diwwy20/pp-food-client/internal/domain"
)

// CartService is the authoritative cart surface; it satisfies cartsync.API.
// Mutating calls carry an idempotency key so a retried request (e.g. after
// a token refresh replay) cannot double-apply.
type CartService struct {
	client *authclient.Client
}

func NewCartService(client *authclient.Client) *CartService {
	return &CartService{client: client}
}

func (s *CartService) Get(ctx context.Context) (*domain.Cart, error) {
	env, err := s.client.Do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := env.Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

type addItemRequest struct {
	ProductID       int64                   `json:"productId"`
	Quantity        int                     `json:"quantity"`
	SelectedOptions []domain.SelectedOption `json:"selectedOptions,omitempty"`
	Note            string                  `json:"note,omitempty"`
}

func (s *CartService) AddItem(ctx context.Context, productID int64, quantity int, selectedOptions []domain.SelectedOption, note string) (*domain.Cart, error) {
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}
	env, err := s.client.Do(ctx, http.MethodPost, "/cart/items", addItemRequest{
		ProductID:       productID,
		Quantity:        quantity,
		SelectedOptions: selectedOptions,
		Note:            note,
	}, authclient.WithHeader("X-Idempotency-Key", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := env.Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

type updateItemRequest struct {
	Quantity        int                     `json:"quantity"`
	SelectedOptions []domain.SelectedOption `json:"selectedOptions,omitempty"`
}

func (s *CartService) UpdateItem(ctx context.Context, itemID int64, quantity int, selectedOptions []domain.SelectedOption) (*domain.Cart, error) {
	env, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemID), updateItemRequest{
		Quantity:        quantity,
		SelectedOptions: selectedOptions,
	}, authclient.WithHeader("X-Idempotency-Key", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := env.Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, itemID int64) (*domain.Cart, error) {
	env, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil,
		authclient.WithHeader("X-Idempotency-Key", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := env.Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
