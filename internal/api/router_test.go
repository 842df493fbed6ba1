package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-cart/internal/api"
	"github.com/nikolayk812/storefront-cart/internal/banner"
	"github.com/nikolayk812/storefront-cart/internal/cartstore"
	"github.com/nikolayk812/storefront-cart/internal/checkout"
	"github.com/nikolayk812/storefront-cart/internal/client"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/nikolayk812/storefront-cart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartLifecycle(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/cart/items", map[string]any{
		"product": map[string]any{"skuCode": "iphone_13", "name": "iPhone 13", "price": 999.99},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPut, "/cart/items/0", map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decodeBody[api.CartDTO](t, rec)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "iphone_13", cart.Items[0].SKUCode)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "1999.98", cart.Items[0].Subtotal)
	assert.Equal(t, "pixel_8", cart.Items[1].SKUCode)
	assert.Equal(t, 3, cart.ItemCount)
	require.NotNil(t, cart.Total)
	assert.Equal(t, "2699.97", *cart.Total)
	assert.Equal(t, "ecommerce-cart", cart.Owner)

	rec = env.do(t, http.MethodDelete, "/cart/skus/iphone_13", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[api.CartDTO](t, rec).Items, 1)

	rec = env.do(t, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[api.CartDTO](t, rec).Items)
}

func TestCartErrors(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{name: "remove missing index", method: http.MethodDelete, path: "/cart/items/5", wantCode: http.StatusNotFound},
		{name: "non numeric index", method: http.MethodPut, path: "/cart/items/first", body: map[string]any{"quantity": 1}, wantCode: http.StatusBadRequest},
		{name: "missing quantity", method: http.MethodPut, path: "/cart/skus/abc", body: map[string]any{}, wantCode: http.StatusBadRequest},
		{name: "unknown sku", method: http.MethodPut, path: "/cart/skus/abc", body: map[string]any{"quantity": 1}, wantCode: http.StatusNotFound},
		{name: "no product", method: http.MethodPost, path: "/cart/items", body: map[string]any{}, wantCode: http.StatusBadRequest},
		{name: "bad price", method: http.MethodPost, path: "/cart/items", body: map[string]any{"product": map[string]any{"skuCode": "x", "price": "free"}}, wantCode: http.StatusBadRequest},
		{name: "catalog miss", method: http.MethodPost, path: "/cart/items", body: map[string]any{"productId": 404}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name     string
		outcome  domain.OrderOutcome
		wantCode int
	}{
		{
			name:     "success",
			outcome:  domain.OrderOutcome{Kind: domain.OutcomeSuccess, Message: "Order Placed Successfully"},
			wantCode: http.StatusOK,
		},
		{
			name:     "pending fallback",
			outcome:  domain.OrderOutcome{Kind: domain.OutcomePendingFallback, Message: "Order placed! We're processing it and will confirm shortly."},
			wantCode: http.StatusOK,
		},
		{
			name:     "failure",
			outcome:  domain.OrderOutcome{Kind: domain.OutcomeFailure, Message: "Cart is empty!"},
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAPIEnv(t)
			tt.outcome.AttemptID = uuid.New()
			env.checkout.outcome = tt.outcome

			rec := env.do(t, http.MethodPost, "/cart/checkout", nil)
			require.Equal(t, tt.wantCode, rec.Code)

			dto := decodeBody[api.OutcomeDTO](t, rec)
			assert.Equal(t, string(tt.outcome.Kind), dto.Kind)
			assert.Equal(t, tt.outcome.Message, dto.Message)
			assert.Equal(t, tt.outcome.AttemptID.String(), dto.AttemptID)
		})
	}
}

func TestCheckoutInFlight(t *testing.T) {
	env := newAPIEnv(t)
	env.checkout.err = checkout.ErrSubmissionInFlight

	rec := env.do(t, http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "submission_in_flight", decodeBody[api.ErrorResponse](t, rec).Code)
}

func TestStatusAndAcknowledge(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/status/ack", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	outcome := domain.OrderOutcome{Kind: domain.OutcomePendingFallback, Message: "processing", AttemptID: uuid.New()}
	env.board.SetBusy(true)
	env.board.Show(outcome)
	env.board.Notify(outcome, "still working")

	rec = env.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decodeBody[api.StatusDTO](t, rec)
	assert.True(t, status.Busy)
	require.NotNil(t, status.Banner)
	assert.Equal(t, "processing", status.Banner.Message)
	require.NotNil(t, status.Notice)
	assert.Equal(t, "still working", status.Notice.Text)

	rec = env.do(t, http.MethodPost, "/status/ack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, outcome.AttemptID.String(), decodeBody[api.NoticeDTO](t, rec).AttemptID)

	rec = env.do(t, http.MethodGet, "/status", nil)
	assert.Nil(t, decodeBody[api.StatusDTO](t, rec).Notice)
}

func TestSessionSwitchesCart(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/session/login", map[string]any{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ecommerce-cart-alice", decodeBody[api.IdentityDTO](t, rec).Owner)

	rec = env.do(t, http.MethodGet, "/cart", nil)
	cart := decodeBody[api.CartDTO](t, rec)
	assert.Equal(t, "ecommerce-cart-alice", cart.Owner)
	assert.Empty(t, cart.Items)

	rec = env.do(t, http.MethodGet, "/session/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody[api.IdentityDTO](t, rec).Username)

	rec = env.do(t, http.MethodPost, "/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cart = decodeBody[api.CartDTO](t, rec)
	assert.Equal(t, "ecommerce-cart", cart.Owner)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "pixel_8", cart.Items[0].SKUCode)
	assert.False(t, env.session.loggedIn)
}

func TestLoginRollsBackWhenCartSwitchFails(t *testing.T) {
	env := newAPIEnvWithRepo(t, stallingRepo{
		CartRepository: repository.NewMemoryCart(),
		ownerID:        domain.CartOwnerKey("alice"),
	})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	body, err := json.Marshal(map[string]any{"username": "alice", "password": "secret"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/session/login", bytes.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.False(t, env.session.loggedIn)

	rec = env.do(t, http.MethodGet, "/cart", nil)
	cart := decodeBody[api.CartDTO](t, rec)
	assert.Equal(t, "ecommerce-cart", cart.Owner)
	assert.True(t, cart.Anonymous)
}

func TestSessionProfile(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPut, "/session/me", map[string]any{"email": "alice@example.com"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/session/login", map[string]any{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/session/me", map[string]any{"username": "alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decodeBody[api.IdentityDTO](t, rec).Email)
}

func TestOrderSummary(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/orders/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, client.OrderSummary{SKUCode: "pixel_8", InStock: true}, decodeBody[client.OrderSummary](t, rec))
}

func TestLoginRejected(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/session/login", map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/session/login", map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/session/register", map[string]any{
		"username": gofakeit.Username(),
		"email":    gofakeit.Email(),
		"password": gofakeit.Password(true, true, true, false, false, 12),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProducts(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decodeBody[[]api.ProductDTO](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "pixel_8", products[0].SKUCode)
	assert.Equal(t, "699.99", products[0].Price.String())

	rec = env.do(t, http.MethodGet, "/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/products/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	product := decodeBody[api.ProductDTO](t, rec)
	require.NotNil(t, product.InStock)
	assert.True(t, *product.InStock)
}

func TestRequestsAreObserved(t *testing.T) {
	env := newAPIEnv(t)

	env.do(t, http.MethodGet, "/cart", nil)
	env.do(t, http.MethodDelete, "/cart/items/3", nil)

	require.Len(t, env.observer.routes, 2)
	assert.Contains(t, []string{"/cart", "/cart/"}, env.observer.routes[0])
	assert.Equal(t, "/cart/items/{index}", env.observer.routes[1])
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, env.observer.statuses)
}

type apiEnv struct {
	router   http.Handler
	board    *banner.Board
	checkout *fakeCheckout
	session  *fakeSession
	observer *recordingObserver
}

func newAPIEnv(t *testing.T) apiEnv {
	t.Helper()
	return newAPIEnvWithRepo(t, repository.NewMemoryCart())
}

func newAPIEnvWithRepo(t *testing.T, repo port.CartRepository) apiEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	store := cartstore.New(repo, logger)
	t.Cleanup(store.Close)

	env := apiEnv{
		board:    banner.NewBoard(),
		checkout: &fakeCheckout{},
		session:  &fakeSession{},
		observer: &recordingObserver{},
	}

	h := api.NewHandler(store, env.checkout, env.board, fakeCatalog{}, env.session, fakeReports{}, logger)
	env.router = api.NewRouter(h, api.RouterConfig{Timeout: time.Second, Observe: env.observer})

	return env
}

func (e apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type fakeCheckout struct {
	outcome domain.OrderOutcome
	err     error
}

func (f *fakeCheckout) Submit(context.Context) (domain.OrderOutcome, error) {
	return f.outcome, f.err
}

var pixel = domain.Product{
	ID:      7,
	Name:    "Pixel 8",
	SKUCode: "pixel_8",
	Price:   domain.NewMoney(decimal.RequireFromString("699.99"), domain.DefaultCurrency),
}

type fakeCatalog struct{}

func (fakeCatalog) Products(context.Context) ([]domain.Product, error) {
	return []domain.Product{pixel}, nil
}

func (fakeCatalog) CheckStock(_ context.Context, skuCodes ...string) ([]client.StockLevel, error) {
	levels := make([]client.StockLevel, 0, len(skuCodes))
	for _, sku := range skuCodes {
		levels = append(levels, client.StockLevel{SKUCode: sku, InStock: sku == pixel.SKUCode})
	}
	return levels, nil
}

func (fakeCatalog) Product(_ context.Context, id int64) (domain.Product, error) {
	if id != pixel.ID {
		return domain.Product{}, &client.APIError{StatusCode: http.StatusNotFound}
	}
	return pixel, nil
}

type fakeSession struct {
	loggedIn bool
	username string
}

func (s *fakeSession) Login(_ context.Context, username, password string) (port.Identity, error) {
	if password != "secret" {
		return port.Identity{}, &client.APIError{StatusCode: http.StatusUnauthorized, Body: []byte("Bad credentials")}
	}
	s.loggedIn = true
	s.username = username
	return port.Identity{Username: username, Role: "USER", Token: "token"}, nil
}

func (s *fakeSession) Register(context.Context, string, string, string, string) error {
	return nil
}

func (s *fakeSession) Me(context.Context) (port.Identity, error) {
	if !s.loggedIn {
		return port.Identity{}, &client.APIError{StatusCode: http.StatusUnauthorized}
	}
	return port.Identity{Username: s.username, Role: "USER"}, nil
}

func (s *fakeSession) UpdateMe(_ context.Context, identity port.Identity) (port.Identity, error) {
	if !s.loggedIn {
		return port.Identity{}, &client.APIError{StatusCode: http.StatusUnauthorized}
	}
	identity.Role = "USER"
	return identity, nil
}

func (s *fakeSession) Logout() {
	s.loggedIn = false
	s.username = ""
}

type fakeReports struct{}

func (fakeReports) OrderSummary(context.Context) (client.OrderSummary, error) {
	return client.OrderSummary{SKUCode: pixel.SKUCode, InStock: true}, nil
}

// stallingRepo blocks loads of one owner until the caller gives up.
type stallingRepo struct {
	port.CartRepository
	ownerID string
}

func (r stallingRepo) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == r.ownerID {
		<-ctx.Done()
		return domain.Cart{}, ctx.Err()
	}
	return r.CartRepository.GetCart(ctx, ownerID)
}

type recordingObserver struct {
	routes   []string
	statuses []int
}

func (o *recordingObserver) ObserveRequest(handler string, status int, _ time.Duration) {
	o.routes = append(o.routes, handler)
	o.statuses = append(o.statuses, status)
}
