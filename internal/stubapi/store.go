package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrBadCredential = errors.New("invalid email or password")
)

type userRecord struct {
	user     domain.User
	password string
}

// Store is the stub backend's in-memory state: users, catalog and carts.
// It stands in for the real backend's database; everything is lost on
// restart, which is fine for development and tests.
type Store struct {
	mu          sync.RWMutex
	users       map[int64]*userRecord
	byEmail     map[string]int64
	categories  map[int64]domain.Category
	products    map[int64]domain.Product
	carts       map[int64]*domain.Cart
	otps        map[string]string // email -> verification code
	resets      map[string]string // reset token -> email
	idempotency map[string]bool
	nextID      int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*userRecord),
		byEmail:     make(map[string]int64),
		categories:  make(map[int64]domain.Category),
		products:    make(map[int64]domain.Product),
		carts:       make(map[int64]*domain.Cart),
		otps:        make(map[string]string),
		resets:      make(map[string]string),
		idempotency: make(map[string]bool),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *Store) CreateUser(email, password, firstName, lastName string, role domain.UserRole, verified bool) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[strings.ToLower(email)]; ok {
		return domain.User{}, ErrEmailTaken
	}
	user := domain.User{
		ID:         s.id(),
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       role,
		IsVerified: verified,
	}
	s.users[user.ID] = &userRecord{user: user, password: password}
	s.byEmail[strings.ToLower(email)] = user.ID
	return user, nil
}

func (s *Store) Authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, ErrBadCredential
	}
	rec := s.users[id]
	if rec.password != password {
		return domain.User{}, ErrBadCredential
	}
	return rec.user, nil
}

func (s *Store) User(id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return rec.user, nil
}

func (s *Store) UserByEmail(email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return s.users[id].user, nil
}

func (s *Store) UpdateProfile(id int64, firstName, lastName, nickName, profileImage string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if firstName != "" {
		rec.user.FirstName = firstName
	}
	if lastName != "" {
		rec.user.LastName = lastName
	}
	if nickName != "" {
		rec.user.NickName = nickName
	}
	if profileImage != "" {
		rec.user.ProfileImage = profileImage
	}
	return rec.user, nil
}

func (s *Store) ChangePassword(id int64, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if rec.password != current {
		return ErrBadCredential
	}
	rec.password = next
	return nil
}

func (s *Store) MarkVerified(email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	s.users[id].user.IsVerified = true
	return s.users[id].user, nil
}

func (s *Store) SetPassword(email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return ErrNotFound
	}
	s.users[id].password = password
	return nil
}

// --- otp / reset tokens ---

func (s *Store) SetOTP(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[strings.ToLower(email)] = code
}

// ConsumeOTP resolves a verification code back to its email and burns it.
func (s *Store) ConsumeOTP(code string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, stored := range s.otps {
		if stored == code {
			delete(s.otps, email)
			return email, true
		}
	}
	return "", false
}

func (s *Store) SetResetToken(token, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[token] = strings.ToLower(email)
}

func (s *Store) ConsumeResetToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resets[token]
	if ok {
		delete(s.resets, token)
	}
	return email, ok
}

// --- idempotency ---

// SeenIdempotencyKey records the key and reports whether it was already
// used, so a replayed cart mutation is not applied twice.
func (s *Store) SeenIdempotencyKey(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idempotency[key] {
		return true
	}
	s.idempotency[key] = true
	return false
}

// --- categories ---

func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateCategory(nameTH, nameEN string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.Category{ID: s.id(), NameTH: nameTH, NameEN: nameEN}
	s.categories[c.ID] = c
	return c
}

func (s *Store) UpdateCategory(id int64, nameTH, nameEN string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, ErrNotFound
	}
	c.NameTH = nameTH
	c.NameEN = nameEN
	s.categories[id] = c
	return c, nil
}

func (s *Store) DeleteCategory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- products ---

// ProductQuery filters the product listing the way the menu and admin
// pages do.
type ProductQuery struct {
	Query         string
	Category      string
	IsAvailable   *bool
	IsRecommended *bool
}

func (s *Store) Products(q ProductQuery) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if q.Query != "" {
			needle := strings.ToLower(q.Query)
			if !strings.Contains(strings.ToLower(p.NameTH), needle) &&
				!strings.Contains(strings.ToLower(p.NameEN), needle) {
				continue
			}
		}
		if q.Category != "" {
			cat, ok := s.categories[p.CategoryID]
			if !ok || !strings.EqualFold(cat.NameEN, q.Category) {
				continue
			}
		}
		if q.IsAvailable != nil && p.IsAvailable != *q.IsAvailable {
			continue
		}
		if q.IsRecommended != nil && p.IsRecommended != *q.IsRecommended {
			continue
		}
		out = append(out, s.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) withCategory(p domain.Product) domain.Product {
	if cat, ok := s.categories[p.CategoryID]; ok {
		c := cat
		p.Category = &c
	}
	return p
}

func (s *Store) Product(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return s.withCategory(p), nil
}

func (s *Store) CreateProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	for i := range p.Images {
		p.Images[i].ID = s.id()
	}
	s.products[p.ID] = p
	return s.withCategory(p)
}

func (s *Store) UpdateProduct(id int64, update domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	update.ID = id
	if update.Images == nil {
		update.Images = p.Images
	} else {
		for i := range update.Images {
			if update.Images[i].ID == 0 {
				update.Images[i].ID = s.id()
			}
		}
	}
	s.products[id] = update
	return s.withCategory(update), nil
}

func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) DeleteProductImage(imageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, p := range s.products {
		for i, img := range p.Images {
			if img.ID == imageID {
				p.Images = append(p.Images[:i], p.Images[i+1:]...)
				s.products[pid] = p
				return nil
			}
		}
	}
	return ErrNotFound
}

// --- carts ---

// Cart returns the user's cart, creating an empty one on first touch.
func (s *Store) Cart(userID int64) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID).Clone()
}

func (s *Store) cartLocked(userID int64) *domain.Cart {
	cart, ok := s.carts[userID]
	if !ok {
		cart = &domain.Cart{ID: s.id(), UserID: userID, Items: []domain.CartItem{}}
		s.carts[userID] = cart
	}
	return cart
}

func (s *Store) AddCartItem(userID, productID int64, quantity int, selectedOptions []domain.SelectedOption, note string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[productID]
	if !ok {
		return nil, ErrNotFound
	}
	cart := s.cartLocked(userID)
	cart.Items = append(cart.Items, domain.CartItem{
		ID:              s.id(),
		ProductID:       productID,
		Quantity:        quantity,
		Product:         s.withCategory(product),
		SelectedOptions: selectedOptions,
		Note:            note,
	})
	return cart.Clone(), nil
}

func (s *Store) UpdateCartItem(userID, itemID int64, quantity int, selectedOptions []domain.SelectedOption) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			if selectedOptions != nil {
				cart.Items[i].SelectedOptions = selectedOptions
			}
			return cart.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) RemoveCartItem(userID, itemID int64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return cart.Clone(), nil
		}
	}
	return nil, ErrNotFound
}
