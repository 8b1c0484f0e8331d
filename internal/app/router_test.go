package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/catalog/catalogtest"
	"github.com/linemk/storefront/internal/catalog/search"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUsers хранит пользователей в памяти
type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func (m *memUsers) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = int64(len(m.byEmail) + 1)
	m.byEmail[user.Email] = user
	return user, nil
}

func (m *memUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// recordingBasket запоминает покупателя, от имени которого пришел запрос
type recordingBasket struct {
	userID int64
}

func (b *recordingBasket) Add(ctx context.Context, userID, productID int64, amount int) (*models.OrderLine, error) {
	b.userID = userID
	if productID > 100 {
		return nil, storage.ErrProductNotFound
	}
	return &models.OrderLine{ProductID: productID, Amount: amount}, nil
}

func (b *recordingBasket) Remove(ctx context.Context, userID, productID int64, amount int) (int, error) {
	b.userID = userID
	return amount, nil
}

func (b *recordingBasket) Checkout(ctx context.Context, userID int64, shipTo string) (*models.Order, error) {
	b.userID = userID
	return nil, service.ErrEmptyBasket
}

type noOrders struct{}

func (noOrders) Profile(ctx context.Context, userID int64) (*service.ProfileResponse, error) {
	return &service.ProfileResponse{Email: "buyer@test.com", Orders: []*service.OrderSummary{}}, nil
}

func (noOrders) Order(ctx context.Context, userID int64, orderID uuid.UUID) (*service.OrderResponse, error) {
	return nil, storage.ErrOrderNotFound
}

func (noOrders) Done(ctx context.Context, userID int64, orderID uuid.UUID) (*models.Order, error) {
	return nil, storage.ErrOrderNotFound
}

type fixedSeeds struct{}

func (fixedSeeds) Seed(ctx context.Context, sessionID string, reset bool) (uint64, error) {
	return 7, nil
}

type staticIDs string

func (s staticIDs) NewID() string { return string(s) }

type testServer struct {
	*httptest.Server
	basket *recordingBasket
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "testsecret")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := catalogtest.New(t)
	catalogRepo := storage.NewCatalogRepository(f.DB)
	basket := &recordingBasket{}

	router := app.NewRouter(log, app.Services{
		Auth:    service.NewAuthService(log, &memUsers{byEmail: map[string]*models.User{}}, time.Hour),
		Catalog: service.NewCatalogService(log, catalogRepo, search.DefaultShowFirst),
		Random:  service.NewRandomService(log, catalogRepo, fixedSeeds{}, 4),
		Basket:  basket,
		Orders:  noOrders{},
	}, staticIDs("session-1"), time.Hour)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, basket: basket}
}

func (s *testServer) authenticate(t *testing.T, username, password string) string {
	t.Helper()
	reqBody := []byte(`{"username": "` + username + `", "password": "` + password + `"}`)
	resp, err := http.Post(s.URL+"/api/auth", "application/json", bytes.NewBuffer(reqBody))
	require.NoError(t, err, "Auth request should not error")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid auth")

	var authResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authResp))
	require.NotEmpty(t, authResp.Token)
	return authResp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// сценарий с безуспешной аутентификацией пользователя
func TestRouter_AuthInvalid(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, "POST", "/api/auth", "", `{"username": "", "password": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	srv.authenticate(t, "buyer@test.com", "testpass1")
	resp = srv.do(t, "POST", "/api/auth", "", `{"username": "buyer@test.com", "password": "wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CatalogIsPublic(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, "GET", "/api/categories", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, "GET", "/api/catalog/fridges?has_freezer=1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.CategoryPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Products, 2)

	resp = srv.do(t, "GET", "/api/catalog/tractors", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, "GET", "/api/search", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, "GET", "/api/random?page=2", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var random service.RandomPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&random))
	assert.Equal(t, 2, random.Pages)
	assert.Len(t, random.Products, 2)
}

// сценарий изменения корзины без токена
func TestRouter_BasketForbidden(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, "POST", "/api/basket/add", "", `{"product_id": 1}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Forbidden", body["error"])
}

// сценарий работы с корзиной авторизованного покупателя
func TestRouter_Basket(t *testing.T) {
	srv := newTestServer(t)
	_ = srv.authenticate(t, "first@test.com", "testpass1")
	token := srv.authenticate(t, "second@test.com", "testpass1")

	resp := srv.do(t, "POST", "/api/basket/add", token, `{"product_id": 1, "amount": 2}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), srv.basket.userID, "user id comes from the token")

	resp = srv.do(t, "POST", "/api/basket/add", token, `{"product_id": 500}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, "POST", "/api/basket/checkout", token, `{"ship_to": "Berlin"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, "GET", "/api/profile", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, "GET", "/api/orders/"+uuid.NewString(), token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
