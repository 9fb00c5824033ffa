package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Diwwy20/pp-food-client/internal/authclient"
	"github.com/Diwwy20/pp-food-client/internal/domain"
)

type ProductService struct {
	client *authclient.Client
}

func NewProductService(client *authclient.Client) *ProductService {
	return &ProductService{client: client}
}

// ProductFilter mirrors the menu/admin filter controls. Nil booleans and
// empty strings mean "all" and are omitted from the query.
type ProductFilter struct {
	Query         string
	Category      string
	IsAvailable   *bool
	IsRecommended *bool
}

func (f ProductFilter) values() url.Values {
	params := url.Values{}
	if f.Query != "" {
		params.Set("query", f.Query)
	}
	if f.Category != "" && f.Category != "all" {
		params.Set("category", f.Category)
	}
	if f.IsAvailable != nil {
		params.Set("isAvailable", strconv.FormatBool(*f.IsAvailable))
	}
	if f.IsRecommended != nil {
		params.Set("isRecommended", strconv.FormatBool(*f.IsRecommended))
	}
	return params
}

func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	env, err := s.client.Do(ctx, http.MethodGet, "/products", nil,
		authclient.WithQuery(filter.values()))
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := env.Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	env, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var product domain.Product
	if err := env.Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductForm is the admin create/update payload. Images ride along as
// multipart file parts next to the scalar fields.
type ProductForm struct {
	NameTH        string
	NameEN        string
	DescriptionTH string
	DescriptionEN string
	Price         float64
	CategoryID    int64
	IsAvailable   bool
	IsRecommended bool
	Images        []FormFile
}

func (f ProductForm) fields() map[string]string {
	return map[string]string{
		"nameTh":        f.NameTH,
		"nameEn":        f.NameEN,
		"descriptionTh": f.DescriptionTH,
		"descriptionEn": f.DescriptionEN,
		"price":         strconv.FormatFloat(f.Price, 'f', 2, 64),
		"categoryId":    strconv.FormatInt(f.CategoryID, 10),
		"isAvailable":   strconv.FormatBool(f.IsAvailable),
		"isRecommended": strconv.FormatBool(f.IsRecommended),
	}
}

func (s *ProductService) Create(ctx context.Context, form ProductForm) (*domain.Product, error) {
	body, contentType, err := encodeMultipart(form.fields(), form.Images...)
	if err != nil {
		return nil, err
	}
	env, err := s.client.Do(ctx, http.MethodPost, "/products", nil,
		authclient.WithRawBody(body, contentType))
	if err != nil {
		return nil, err
	}
	var product domain.Product
	if err := env.Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, form ProductForm) (*domain.Product, error) {
	body, contentType, err := encodeMultipart(form.fields(), form.Images...)
	if err != nil {
		return nil, err
	}
	env, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil,
		authclient.WithRawBody(body, contentType))
	if err != nil {
		return nil, err
	}
	var product domain.Product
	if err := env.Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil)
	return err
}

func (s *ProductService) DeleteImage(ctx context.Context, imageID int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/image/%d", imageID), nil)
	return err
}
