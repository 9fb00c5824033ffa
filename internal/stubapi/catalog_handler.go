package stubapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

const maxUploadSize = 5 << 20 // 5MB

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := ProductQuery{
		Query:    r.URL.Query().Get("query"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("isAvailable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "isAvailable must be a boolean")
			return
		}
		q.IsAvailable = &v
	}
	if raw := r.URL.Query().Get("isRecommended"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "isRecommended must be a boolean")
			return
		}
		q.IsRecommended = &v
	}
	respondJSON(w, http.StatusOK, s.store.Products(q))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "product id must be a positive integer")
		return
	}
	product, err := s.store.Product(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// productFromForm parses the admin multipart payload shared by create and
// update.
func productFromForm(r *http.Request) (domain.Product, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return domain.Product{}, err
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return domain.Product{}, err
	}
	categoryID, err := strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		NameTH:        r.FormValue("nameTh"),
		NameEN:        r.FormValue("nameEn"),
		DescriptionTH: r.FormValue("descriptionTh"),
		DescriptionEN: r.FormValue("descriptionEn"),
		Price:         price,
		CategoryID:    categoryID,
	}
	p.IsAvailable, _ = strconv.ParseBool(r.FormValue("isAvailable"))
	p.IsRecommended, _ = strconv.ParseBool(r.FormValue("isRecommended"))

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			p.Images = append(p.Images, domain.ProductImage{URL: "/uploads/" + header.Filename})
		}
	}
	return p, nil
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := productFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product form")
		return
	}
	if product.NameTH == "" {
		respondError(w, http.StatusBadRequest, "nameTh is required")
		return
	}
	respondJSON(w, http.StatusCreated, s.store.CreateProduct(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "product id must be a positive integer")
		return
	}
	update, err := productFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product form")
		return
	}
	product, err := s.store.UpdateProduct(id, update)
	if err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "product id must be a positive integer")
		return
	}
	if err := s.store.DeleteProduct(id); err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondMessage(w, http.StatusOK, "product deleted")
}

func (s *Server) handleDeleteProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "image id must be a positive integer")
		return
	}
	if err := s.store.DeleteProductImage(id); err != nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	respondMessage(w, http.StatusOK, "image deleted")
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Categories())
}

type categoryRequest struct {
	NameTH string `json:"nameTh"`
	NameEN string `json:"nameEn"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NameTH == "" || req.NameEN == "" {
		respondError(w, http.StatusBadRequest, "nameTh and nameEn are required")
		return
	}
	respondJSON(w, http.StatusCreated, s.store.CreateCategory(req.NameTH, req.NameEN))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "category id must be a positive integer")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	category, err := s.store.UpdateCategory(id, req.NameTH, req.NameEN)
	if err != nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "category id must be a positive integer")
		return
	}
	if err := s.store.DeleteCategory(id); err != nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondMessage(w, http.StatusOK, "category deleted")
}
