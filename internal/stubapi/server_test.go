package stubapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...ServerOption) (*httptest.Server, *Store) {
	store := NewStore()
	Seed(store)
	server := httptest.NewServer(NewServer(store, NewMemoryTokenStore(), opts...).Router())
	t.Cleanup(server.Close)
	return server, store
}

// newJarClient keeps the refresh cookie between calls, like a browser.
func newJarClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestLogin_Success(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/login", "", map[string]string{
		"email":    DemoUserEmail,
		"password": DemoUserPassword,
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var data struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, DemoUserEmail, data.User.Email)
	assert.NotEmpty(t, data.AccessToken)

	cookies := client.Jar.Cookies(mustParseURL(t, server.URL))
	require.Len(t, cookies, 1)
	assert.Equal(t, refreshCookieName, cookies[0].Name)
}

func TestLogin_WrongPassword(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/login", "", map[string]string{
		"email":    DemoUserEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid email or password", env.Message)
}

func TestLogin_UnverifiedAccountRejected(t *testing.T) {
	server, store := newTestServer(t)
	client := newJarClient(t)

	_, err := store.CreateUser("new@ppfood.dev", "secret12", "New", "User", domain.RoleUser, false)
	require.NoError(t, err)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/login", "", map[string]string{
		"email":    "new@ppfood.dev",
		"password": "secret12",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "please verify your email first", env.Message)
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	server, store := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
		"firstName": "Som",
		"lastName":  "Chai",
		"email":     "somchai@ppfood.dev",
		"password":  "secret12",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "verification code sent", env.Message)

	// Inject a known code; the generated one only goes to the log.
	store.SetOTP("somchai@ppfood.dev", "123456")

	status, env = doJSON(t, client, http.MethodPost, server.URL+"/auth/verify-email", "", map[string]string{
		"token": "123456",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.User.IsVerified)
	assert.NotEmpty(t, data.AccessToken)

	// The code is single-use.
	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/auth/verify-email", "", map[string]string{
		"token": "123456",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
		"email":    DemoUserEmail,
		"password": "secret12",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email already registered", env.Message)
}

func TestResetPasswordFlow(t *testing.T) {
	server, store := newTestServer(t)
	client := newJarClient(t)

	// The endpoint never reveals whether the account exists.
	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/forgot-password", "", map[string]string{
		"email": "nobody@ppfood.dev",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reset link sent if the account exists", env.Message)

	store.SetResetToken("reset-1", DemoUserEmail)
	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/auth/reset-password", "", map[string]string{
		"token":       "reset-1",
		"newPassword": "fresh123",
	})
	require.Equal(t, http.StatusOK, status)

	login(t, client, server.URL, DemoUserEmail, "fresh123")
}

func TestRequireAuth_MissingAndBogusToken(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodGet, server.URL+"/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = doJSON(t, client, http.MethodGet, server.URL+"/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCartFlow(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	token := login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	products := listProducts(t, client, server.URL, "")
	require.NotEmpty(t, products)
	productID := products[0].ID

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/cart/items", token, map[string]interface{}{
		"productId": productID,
		"quantity":  2,
		"note":      "no cilantro",
	})
	require.Equal(t, http.StatusCreated, status)

	var cart domain.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "no cilantro", cart.Items[0].Note)
	itemID := cart.Items[0].ID

	status, env = doJSON(t, client, http.MethodPut, server.URL+"/cart/items/"+itoa(itemID), token, map[string]interface{}{
		"quantity": 5,
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, 5, cart.Items[0].Quantity)

	status, env = doJSON(t, client, http.MethodDelete, server.URL+"/cart/items/"+itoa(itemID), token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Items)
}

func TestAddCartItem_Validation(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	token := login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"zero quantity", map[string]interface{}{"productId": 1, "quantity": 0}, http.StatusBadRequest},
		{"quantity over cap", map[string]interface{}{"productId": 1, "quantity": 100}, http.StatusBadRequest},
		{"missing product", map[string]interface{}{"quantity": 1}, http.StatusBadRequest},
		{"unknown product", map[string]interface{}{"productId": 999999, "quantity": 1}, http.StatusNotFound},
		{"overlong note", map[string]interface{}{"productId": 1, "quantity": 1, "note": strings.Repeat("ก", 101)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, client, http.MethodPost, server.URL+"/cart/items", token, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestAddCartItem_IdempotencyKeyReplay(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	token := login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	products := listProducts(t, client, server.URL, "")
	body := map[string]interface{}{"productId": products[0].ID, "quantity": 1}

	send := func() (int, domain.Cart) {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, server.URL+"/cart/items", bytes.NewReader(encoded))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Idempotency-Key", "key-1")

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		var cart domain.Cart
		require.NoError(t, json.Unmarshal(env.Data, &cart))
		return resp.StatusCode, cart
	}

	status, cart := send()
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, cart.Items, 1)

	// Replay with the same key: no second line.
	status, cart = send()
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, cart.Items, 1)
}

func TestProductFilters(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	drinks := listProducts(t, client, server.URL, "?category=drink")
	require.Len(t, drinks, 1)
	assert.Equal(t, "Thai Iced Tea", drinks[0].NameEN)

	recommended := listProducts(t, client, server.URL, "?isRecommended=true")
	require.Len(t, recommended, 2)

	matched := listProducts(t, client, server.URL, "?query=tom")
	require.Len(t, matched, 1)
	assert.Equal(t, "Tom Yum Goong", matched[0].NameEN)
}

func TestAdminGating(t *testing.T) {
	server, _ := newTestServer(t)

	userClient := newJarClient(t)
	userToken := login(t, userClient, server.URL, DemoUserEmail, DemoUserPassword)

	status, env := doJSON(t, userClient, http.MethodPost, server.URL+"/categories", userToken, map[string]string{
		"nameTh": "อื่นๆ", "nameEn": "other",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "admin access required", env.Message)

	adminClient := newJarClient(t)
	adminToken := login(t, adminClient, server.URL, DemoAdminEmail, DemoAdminPassword)

	status, env = doJSON(t, adminClient, http.MethodPost, server.URL+"/categories", adminToken, map[string]string{
		"nameTh": "อื่นๆ", "nameEn": "other",
	})
	require.Equal(t, http.StatusCreated, status)

	var created domain.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "other", created.NameEN)
}

func TestRefreshToken_RotatesAccessToken(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	oldToken := login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/refresh-token", "", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEqual(t, oldToken, data.AccessToken)

	status, _ = doJSON(t, client, http.MethodGet, server.URL+"/cart", data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRefreshToken_WithoutCookie(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)

	status, env := doJSON(t, client, http.MethodPost, server.URL+"/auth/refresh-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing refresh token", env.Message)
}

func TestLogout_RevokesSession(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	token := login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	status, _ := doJSON(t, client, http.MethodPost, server.URL+"/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, client, http.MethodGet, server.URL+"/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// The refresh cookie was revoked too.
	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/auth/refresh-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMe_BootstrapsFromRefreshCookie(t *testing.T) {
	server, _ := newTestServer(t)
	client := newJarClient(t)
	login(t, client, server.URL, DemoUserEmail, DemoUserPassword)

	status, env := doJSON(t, client, http.MethodGet, server.URL+"/auth/me", "", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, DemoUserEmail, data.User.Email)
	assert.NotEmpty(t, data.AccessToken)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func listProducts(t *testing.T, client *http.Client, baseURL, query string) []domain.Product {
	t.Helper()
	status, env := doJSON(t, client, http.MethodGet, baseURL+"/products"+query, "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	return products
}
