package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/adapter/http/handler"
	apimiddleware "github.com/iho/simplebank/internal/adapter/http/middleware"
	"github.com/iho/simplebank/internal/adapter/repository/memory"
	"github.com/iho/simplebank/internal/adapter/repository/postgres"
	"github.com/iho/simplebank/internal/infrastructure/auth"
	"github.com/iho/simplebank/internal/infrastructure/metrics"
	"github.com/iho/simplebank/internal/usecase"
)

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	entries := memory.NewEntryRepository(store)
	transfers := memory.NewTransferRepository(store)
	users := memory.NewUserRepository(store)
	ledger := memory.NewLedgerRepository(store)
	idGen := postgres.NewULIDGenerator()
	logger := zerolog.Nop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tokens := auth.NewJWTManager("test-secret", time.Hour)

	accountUC := usecase.NewAccountUseCase(store, accounts, entries, idGen, nil, m, logger)
	transferUC := usecase.NewTransferUseCase(store, accounts, transfers, entries, idGen, nil, m, logger)
	entryUC := usecase.NewEntryUseCase(accounts, entries)
	userUC := usecase.NewUserUseCase(users, auth.NewBcryptHasher(bcrypt.MinCost), tokens, idGen, m)
	reconUC := usecase.NewReconciliationUseCase(accounts, entries, ledger, m, logger)

	cfg := RouterConfig{
		UserHandler:           handler.NewUserHandler(userUC),
		AccountHandler:        handler.NewAccountHandler(accountUC, entryUC),
		TransferHandler:       handler.NewTransferHandler(transferUC),
		ReconciliationHandler: handler.NewReconciliationHandler(accountUC, reconUC),
		HealthHandler:         handler.NewHealthHandler(nil),
		TokenVerifier:         tokens,
		HTTPMetrics:           apimiddleware.NewHTTPMetrics(reg),
		Gatherer:              reg,
		Logger:                logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(c.t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func register(t *testing.T, router http.Handler, login string) *client {
	t.Helper()

	c := &client{t: t, router: router}
	rec := c.do(http.MethodPost, "/api/v1/users", dto.CreateUserRequest{
		Login:    login,
		Name:     strings.ToUpper(login),
		Email:    login + "@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/users/login", dto.LoginRequest{Login: login, Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c.token = decode[dto.LoginResponse](t, rec).AccessToken
	return c
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/users/",
		"POST /api/v1/users/login",
		"GET /api/v1/users/{id}",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"POST /api/v1/accounts/balance",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/entries",
		"GET /api/v1/accounts/{id}/reconciliation",
		"POST /api/v1/transfers/",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_RequiresToken(t *testing.T) {
	router := NewRouter(newRouterConfig())
	c := &client{t: t, router: router}

	for _, path := range []string{"/api/v1/accounts/", "/api/v1/users/" + uuid.NewString()} {
		rec := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := c.do(http.MethodPost, "/api/v1/transfers/", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewRouter_TransferFlow(t *testing.T) {
	router := NewRouter(newRouterConfig())

	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	rec := alice.do(http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{Currency: "usd"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	aliceUSD := decode[dto.AccountResponse](t, rec)
	assert.Equal(t, "USD", aliceUSD.Currency)

	rec = alice.do(http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{Currency: "USD"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AccountAlreadyExists", decode[dto.ErrorResponse](t, rec).ErrorType)

	rec = bob.do(http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{Currency: "USD"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bobUSD := decode[dto.AccountResponse](t, rec)

	rec = bob.do(http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{Currency: "EUR"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bobEUR := decode[dto.AccountResponse](t, rec)

	rec = alice.do(http.MethodPost, "/api/v1/accounts/balance", `{"account_id":"`+aliceUSD.ID.String()+`","amount":"150.50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	transfer := func(c *client, from, to uuid.UUID, amount string) *httptest.ResponseRecorder {
		return c.do(http.MethodPost, "/api/v1/transfers/", `{"from_account_id":"`+from.String()+`","to_account_id":"`+to.String()+`","amount":`+amount+`}`)
	}

	rec = transfer(alice, aliceUSD.ID, bobUSD.ID, "100.25")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[dto.TransferResultResponse](t, rec)
	assert.True(t, result.FromAccount.Balance.Equal(decimal.RequireFromString("50.25")))
	assert.True(t, result.ToAccount.Balance.Equal(decimal.RequireFromString("100.25")))
	assert.Equal(t, "Transfer ID "+result.Transfer.ID.String(), result.FromEntry.Description)

	rejections := []struct {
		name      string
		client    *client
		from, to  uuid.UUID
		amount    string
		status    int
		errorType string
	}{
		{"same account", alice, aliceUSD.ID, aliceUSD.ID, "1", http.StatusBadRequest, "SameAccountTransfer"},
		{"zero amount", alice, aliceUSD.ID, bobUSD.ID, "0", http.StatusBadRequest, "InvalidAmount"},
		{"not owner", bob, aliceUSD.ID, bobUSD.ID, "1", http.StatusForbidden, "AccountNotOwned"},
		{"currency mismatch", alice, aliceUSD.ID, bobEUR.ID, "1", http.StatusBadRequest, "DifferentCurrencyAccounts"},
		{"insufficient", alice, aliceUSD.ID, bobUSD.ID, "50.26", http.StatusBadRequest, "InsufficientBalance"},
		{"missing destination", alice, aliceUSD.ID, uuid.New(), "1", http.StatusBadRequest, "AccountNotFound"},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			rec := transfer(tt.client, tt.from, tt.to, tt.amount)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.errorType, decode[dto.ErrorResponse](t, rec).ErrorType)
		})
	}

	rec = alice.do(http.MethodGet, "/api/v1/accounts/"+aliceUSD.ID.String()+"/entries?per_page=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	history := decode[dto.ListEntriesResponse](t, rec)
	require.Len(t, history.Entries, 2)
	assert.True(t, history.Entries[0].Amount.Equal(decimal.RequireFromString("-100.25")), "newest first")

	rec = bob.do(http.MethodGet, "/api/v1/accounts/"+aliceUSD.ID.String()+"/entries", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = alice.do(http.MethodGet, "/api/v1/accounts/"+aliceUSD.ID.String()+"/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dto.ReconciliationResponse](t, rec).IsReconciled)

	rec = alice.do(http.MethodGet, "/api/v1/accounts/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListAccountsResponse](t, rec).Accounts, 1)

	rec = alice.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simplebank_transfers_created_total 1")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/transfers/"`)
}

func TestNewRouter_LoginFailures(t *testing.T) {
	router := NewRouter(newRouterConfig())
	register(t, router, "carol")

	c := &client{t: t, router: router}

	rec := c.do(http.MethodPost, "/api/v1/users/login", dto.LoginRequest{Login: "carol", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "IncorrectPassword", decode[dto.ErrorResponse](t, rec).ErrorType)

	rec = c.do(http.MethodPost, "/api/v1/users/login", dto.LoginRequest{Login: "nobody", Password: "whatever1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "LoginNotFound", decode[dto.ErrorResponse](t, rec).ErrorType)

	rec = c.do(http.MethodPost, "/api/v1/users", dto.CreateUserRequest{Login: "carol", Name: "Carol", Email: "other@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
