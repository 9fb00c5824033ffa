package stubapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Server is the local development backend: the full REST surface the
// client consumes, backed by in-memory state and a pluggable token store.
type Server struct {
	store      *Store
	tokens     TokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type ServerOption func(*Server)

// WithAccessTTL shortens the access-token lifetime; tests use this to
// force the client through the refresh protocol.
func WithAccessTTL(ttl time.Duration) ServerOption {
	return func(s *Server) { s.accessTTL = ttl }
}

func WithRefreshTTL(ttl time.Duration) ServerOption {
	return func(s *Server) { s.refreshTTL = ttl }
}

func NewServer(store *Store, tokens TokenStore, opts ...ServerOption) *Server {
	s := &Server{
		store:      store,
		tokens:     tokens,
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/verify-email", s.handleVerifyEmail)
		r.Post("/resend-otp", s.handleResendOTP)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
		r.Post("/refresh-token", s.handleRefreshToken)
		r.Get("/me", s.handleMe)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/me", s.handleUpdateProfile)
			r.Put("/me/change-password", s.handleChangePassword)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleGetCart)
		r.Post("/items", s.handleAddCartItem)
		r.Put("/items/{id}", s.handleUpdateCartItem)
		r.Delete("/items/{id}", s.handleRemoveCartItem)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Get("/{id}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Post("/", s.handleCreateProduct)
			r.Put("/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
			r.Delete("/image/{id}", s.handleDeleteProductImage)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleListCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/qr", s.handleGenerateQR)
	})

	return r
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// requireAuth resolves the bearer token to a user id; an expired or
// unknown token gets the 401 envelope that drives the client's refresh.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing access token")
			return
		}
		userID, err := s.tokens.Lookup(r.Context(), KindAccess, token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.store.User(userIDFromContext(r.Context()))
		if err != nil || user.Role != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}
