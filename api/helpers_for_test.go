package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"code.tierpay.io/referral/api"
	"code.tierpay.io/referral/api/mocks"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*api.Server
	handler   http.Handler
	hub       *api.Hub
	accounts  *mocks.MockAccountService
	purchases *mocks.MockPurchaseService
	queries   *mocks.MockQueryService
}

func testConfig() api.Config {
	cfg := api.NewDefaultConfig()
	cfg.JWTSecret = "test-secret"
	cfg.Websocket.PingInterval.Duration = time.Second
	return cfg
}

func newServer(t *testing.T) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	cfg := testConfig()
	hub := api.NewHub(log, cfg.Websocket)
	ts := &testServer{
		hub:       hub,
		accounts:  mocks.NewMockAccountService(ctrl),
		purchases: mocks.NewMockPurchaseService(ctrl),
		queries:   mocks.NewMockQueryService(ctrl),
	}

	srv, err := api.New(ctx, log, cfg, ts.accounts, ts.purchases, ts.queries, hub)
	require.NoError(t, err)
	ts.Server = srv
	ts.handler = srv.Handler()
	return ts
}

func testAccount(id types.AccountID) *types.Account {
	return &types.Account{
		ID:             id,
		Name:           "name-" + string(id),
		Email:          string(id) + "@example.com",
		ReferralCode:   "CODE01",
		TotalEarnings:  num.DecimalZero(),
		Level1Earnings: num.DecimalZero(),
		Level2Earnings: num.DecimalZero(),
		CreatedAt:      testNow,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	buf := &bytes.Buffer{}
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login returns a token for the account, going through the login route.
func (ts *testServer) login(t *testing.T, id types.AccountID) string {
	t.Helper()

	account := testAccount(id)
	ts.accounts.EXPECT().Authenticate(gomock.Any(), account.Email, "secret123").Return(account, nil)
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: account.Email, Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := api.AuthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.Error {
	t.Helper()

	e := api.Error{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}
