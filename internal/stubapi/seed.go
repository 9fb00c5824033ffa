package stubapi

import "github.com/Diwwy20/pp-food-client/internal/domain"

// DemoUserEmail and DemoUserPassword are the credentials the demo mode
// logs in with.
const (
	DemoUserEmail    = "demo@ppfood.dev"
	DemoUserPassword = "demo1234"

	DemoAdminEmail    = "admin@ppfood.dev"
	DemoAdminPassword = "admin1234"
)

// Seed loads the bilingual demo menu and the two demo accounts.
func Seed(s *Store) {
	_, _ = s.CreateUser(DemoUserEmail, DemoUserPassword, "Demo", "User", domain.RoleUser, true)
	_, _ = s.CreateUser(DemoAdminEmail, DemoAdminPassword, "Demo", "Admin", domain.RoleAdmin, true)

	main := s.CreateCategory("จานหลัก", "main")
	drink := s.CreateCategory("เครื่องดื่ม", "drink")
	dessert := s.CreateCategory("ของหวาน", "dessert")
	appetizer := s.CreateCategory("ของว่าง", "appetizer")

	spice := domain.ProductOption{
		NameTH:     "ระดับความเผ็ด",
		NameEN:     "Spice level",
		IsRequired: true,
		MaxSelect:  1,
		Choices: []domain.ProductOptionChoice{
			{ID: 9001, NameTH: "ไม่เผ็ด", NameEN: "Mild", Price: 0},
			{ID: 9002, NameTH: "เผ็ดกลาง", NameEN: "Medium", Price: 0},
			{ID: 9003, NameTH: "เผ็ดมาก", NameEN: "Hot", Price: 0},
		},
	}
	extras := domain.ProductOption{
		NameTH:    "เพิ่มเติม",
		NameEN:    "Extras",
		MaxSelect: 2,
		Choices: []domain.ProductOptionChoice{
			{ID: 9101, NameTH: "ไข่ดาว", NameEN: "Fried egg", Price: 10},
			{ID: 9102, NameTH: "ข้าวเพิ่ม", NameEN: "Extra rice", Price: 10},
		},
	}

	s.CreateProduct(domain.Product{
		NameTH:        "ผัดกะเพราหมูสับ",
		NameEN:        "Pad Krapow Moo",
		DescriptionEN: "Stir-fried minced pork with holy basil",
		Price:         65,
		CategoryID:    main.ID,
		IsAvailable:   true,
		IsRecommended: true,
		Options:       []domain.ProductOption{spice, extras},
	})
	s.CreateProduct(domain.Product{
		NameTH:        "ต้มยำกุ้ง",
		NameEN:        "Tom Yum Goong",
		DescriptionEN: "Hot and sour shrimp soup",
		Price:         120,
		CategoryID:    main.ID,
		IsAvailable:   true,
		IsRecommended: true,
		Options:       []domain.ProductOption{spice},
	})
	s.CreateProduct(domain.Product{
		NameTH:      "ชาไทยเย็น",
		NameEN:      "Thai Iced Tea",
		Price:       35,
		CategoryID:  drink.ID,
		IsAvailable: true,
	})
	s.CreateProduct(domain.Product{
		NameTH:      "ข้าวเหนียวมะม่วง",
		NameEN:      "Mango Sticky Rice",
		Price:       80,
		CategoryID:  dessert.ID,
		IsAvailable: true,
	})
	s.CreateProduct(domain.Product{
		NameTH:      "ปอเปี๊ยะทอด",
		NameEN:      "Fried Spring Rolls",
		Price:       50,
		CategoryID:  appetizer.ID,
		IsAvailable: true,
	})
}
