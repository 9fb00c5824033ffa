package domain

import "errors"

// MaxNoteLength caps the free-text note a customer can attach to a cart line.
const MaxNoteLength = 100

var ErrNoteTooLong = errors.New("note exceeds 100 characters")

// SelectedOption is one chosen option value on a cart line. Price is the
// incremental amount the choice adds to the product's base price.
type SelectedOption struct {
	OptionID int64   `json:"optionId"`
	ChoiceID int64   `json:"choiceId"`
	NameTH   string  `json:"nameTh"`
	NameEN   string  `json:"nameEn,omitempty"`
	Price    float64 `json:"price"`
}

type CartItem struct {
	ID              int64            `json:"id"`
	ProductID       int64            `json:"productId"`
	Quantity        int              `json:"quantity"`
	Product         Product          `json:"product"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
	Note            string           `json:"note,omitempty"`
}

type Cart struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"userId"`
	Items  []CartItem `json:"items"`
}

// LineTotal is base price plus the selected option increments, times quantity.
func (i CartItem) LineTotal() float64 {
	unit := i.Product.Price
	for _, opt := range i.SelectedOptions {
		unit += opt.Price
	}
	return unit * float64(i.Quantity)
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) Subtotal() float64 {
	if c == nil {
		return 0
	}
	sum := 0.0
	for _, item := range c.Items {
		sum += item.LineTotal()
	}
	return sum
}

// Clone returns a deep copy so readers never alias the engine's projection.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{ID: c.ID, UserID: c.UserID}
	if c.Items != nil {
		out.Items = make([]CartItem, len(c.Items))
		copy(out.Items, c.Items)
		for i := range out.Items {
			if c.Items[i].SelectedOptions != nil {
				out.Items[i].SelectedOptions = make([]SelectedOption, len(c.Items[i].SelectedOptions))
				copy(out.Items[i].SelectedOptions, c.Items[i].SelectedOptions)
			}
		}
	}
	return out
}

// ValidateNote rejects notes longer than MaxNoteLength runes before any
// network call is made.
func ValidateNote(note string) error {
	if len([]rune(note)) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}
