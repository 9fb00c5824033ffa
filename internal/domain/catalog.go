package domain

type Category struct {
	ID     int64  `json:"id"`
	NameTH string `json:"nameTh"`
	NameEN string `json:"nameEn"`
}

type ProductImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type ProductOptionChoice struct {
	ID     int64   `json:"id"`
	NameTH string  `json:"nameTh"`
	NameEN string  `json:"nameEn,omitempty"`
	Price  float64 `json:"price"`
}

type ProductOption struct {
	ID         int64                 `json:"id"`
	NameTH     string                `json:"nameTh"`
	NameEN     string                `json:"nameEn,omitempty"`
	IsRequired bool                  `json:"isRequired"`
	MaxSelect  int                   `json:"maxSelect"`
	Choices    []ProductOptionChoice `json:"choices"`
}

type Product struct {
	ID            int64           `json:"id"`
	NameTH        string          `json:"nameTh"`
	NameEN        string          `json:"nameEn,omitempty"`
	DescriptionTH string          `json:"descriptionTh,omitempty"`
	DescriptionEN string          `json:"descriptionEn,omitempty"`
	Price         float64         `json:"price"`
	CategoryID    int64           `json:"categoryId"`
	Category      *Category       `json:"category,omitempty"`
	Images        []ProductImage  `json:"images"`
	IsAvailable   bool            `json:"isAvailable"`
	IsRecommended bool            `json:"isRecommended"`
	Options       []ProductOption `json:"options,omitempty"`
}
