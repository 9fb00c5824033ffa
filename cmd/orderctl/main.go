package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Diwwy20/pp-food-client/internal/authclient"
	"github.com/Diwwy20/pp-food-client/internal/cartsync"
	"github.com/Diwwy20/pp-food-client/internal/domain"
	"github.com/Diwwy20/pp-food-client/internal/services"
	"github.com/Diwwy20/pp-food-client/internal/stubapi"
)

type Config struct {
	BaseURL  string
	Email    string
	Password string
}

func loadConfig() *Config {
	return &Config{
		BaseURL:  getEnv("API_URL", "http://localhost:3001"),
		Email:    getEnv("DEMO_EMAIL", stubapi.DemoUserEmail),
		Password: getEnv("DEMO_PASSWORD", stubapi.DemoUserPassword),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// orderctl walks the customer flow end to end against a running backend:
// login, browse the menu, add an item, then hammer the quantity selector
// to show the optimistic projection and the single coalesced write.
func main() {
	cfg := loadConfig()
	ctx := context.Background()

	client, err := authclient.New(cfg.BaseURL, authclient.NewMemoryTokenStore(),
		authclient.WithSessionExpiredHook(func() {
			log.Println("session expired, please log in again")
		}))
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	auth := services.NewAuthService(client)
	products := services.NewProductService(client)
	cart := services.NewCartService(client)
	payments := services.NewPaymentService(client)

	user, err := auth.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		log.Fatalf("login failed (%s): %v", services.AuthFailureKey(err), err)
	}
	log.Printf("logged in as %s %s <%s>", user.FirstName, user.LastName, user.Email)

	menu, err := products.List(ctx, services.ProductFilter{Category: "main"})
	if err != nil {
		log.Fatalf("failed to list products: %v", err)
	}
	if len(menu) == 0 {
		log.Fatal("menu is empty")
	}
	for _, p := range menu {
		log.Printf("menu: [%d] %s (%s) %.2f THB", p.ID, p.NameEN, p.NameTH, p.Price)
	}

	engine := cartsync.NewEngine(cart,
		cartsync.WithErrorHook(func(err error) {
			log.Printf("cart update failed, restoring server state: %v", err)
		}))
	defer engine.Close()

	picked := menu[0]
	var selected []domain.SelectedOption
	if len(picked.Options) > 0 && len(picked.Options[0].Choices) > 0 {
		choice := picked.Options[0].Choices[0]
		selected = append(selected, domain.SelectedOption{
			OptionID: picked.Options[0].ID,
			ChoiceID: choice.ID,
			NameTH:   choice.NameTH,
			NameEN:   choice.NameEN,
			Price:    choice.Price,
		})
	}
	if err := engine.AddItem(ctx, picked.ID, 2, selected, "no cilantro"); err != nil {
		log.Fatalf("failed to add item: %v", err)
	}

	snapshot, total := engine.Snapshot()
	line := snapshot.Items[len(snapshot.Items)-1]
	log.Printf("cart has %d items, subtotal %.2f THB", total, snapshot.Subtotal())

	// Three rapid clicks coalesce into one authoritative write.
	for i := 0; i < 3; i++ {
		_, n := engine.Snapshot()
		engine.SetQuantity(line.ID, line.Quantity+i+1)
		log.Printf("clicked +1, local total now %d (was %d)", line.Quantity+i+1, n)
	}
	time.Sleep(cartsync.DefaultDebounce + 500*time.Millisecond)

	snapshot, total = engine.Snapshot()
	log.Printf("after sync: %d items, subtotal %.2f THB", total, snapshot.Subtotal())

	qr, err := payments.GenerateQR(ctx, snapshot.Subtotal())
	if err != nil {
		log.Fatalf("failed to generate payment QR: %v", err)
	}
	log.Printf("payment QR: %s", qr.QRCode)

	if err := auth.Logout(ctx); err != nil {
		log.Printf("logout failed: %v", err)
	}
}
