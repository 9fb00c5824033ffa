package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Diwwy20/pp-food-client/internal/authclient"
	"github.com/Diwwy20/pp-food-client/internal/domain"
)

type CategoryService struct {
	client *authclient.Client
}

func NewCategoryService(client *authclient.Client) *CategoryService {
	return &CategoryService{client: client}
}

type categoryRequest struct {
	NameTH string `json:"nameTh"`
	NameEN string `json:"nameEn"`
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	env, err := s.client.Do(ctx, http.MethodGet, "/categories", nil)
	if err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := env.Decode(&categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, nameTH, nameEN string) (*domain.Category, error) {
	env, err := s.client.Do(ctx, http.MethodPost, "/categories", categoryRequest{
		NameTH: nameTH,
		NameEN: nameEN,
	})
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if err := env.Decode(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, nameTH, nameEN string) (*domain.Category, error) {
	env, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), categoryRequest{
		NameTH: nameTH,
		NameEN: nameEN,
	})
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if err := env.Decode(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil)
	return err
}
