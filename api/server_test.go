package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"code.tierpay.io/referral/api"
	"code.tierpay.io/referral/api/mocks"
	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/earnings"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	cfg := api.NewDefaultConfig()
	_, err := api.New(context.Background(), logging.NewTestLogger(), cfg, nil, nil, nil, nil)
	assert.ErrorIs(t, err, api.ErrMissingJWTSecret)
}

func TestAuthRoutes(t *testing.T) {
	t.Run("register returns a token and the user", testRegister)
	t.Run("register with a taken email", testRegisterDuplicateEmail)
	t.Run("login with wrong credentials", testLoginInvalidCredentials)
	t.Run("invalid body", testInvalidBody)
	t.Run("protected routes need a valid token", testProtectedRoutes)
}

func testRegister(t *testing.T) {
	ts := newServer(t)

	ts.accounts.EXPECT().Register(gomock.Any(), "Alice", "alice@example.com", "secret123", "SPONS1").
		Return(testAccount("alice"), nil)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "secret123",
		ReferralCode: "SPONS1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := api.AuthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.ID)
	assert.Equal(t, "CODE01", resp.User.ReferralCode)

	// the token opens the protected routes
	profile := &earnings.Profile{Account: testAccount("alice"), DirectReferrals: []*types.Account{testAccount("bob")}}
	ts.queries.EXPECT().Profile(gomock.Any(), types.AccountID("alice")).Return(profile, nil)
	rec = ts.do(t, http.MethodGet, "/api/auth/profile", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := api.ProfileResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.ID)
	require.Len(t, got.DirectReferrals, 1)
	assert.Equal(t, "bob", got.DirectReferrals[0].ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func testRegisterDuplicateEmail(t *testing.T) {
	ts := newServer(t)

	ts.accounts.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, types.ErrEmailAlreadyRegistered)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Name: "a", Email: "a@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email-already-registered", decodeError(t, rec).Code)
}

func testLoginInvalidCredentials(t *testing.T) {
	ts := newServer(t)

	ts.accounts.EXPECT().Authenticate(gomock.Any(), "a@example.com", "nope").Return(nil, accounts.ErrInvalidCredentials)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "a@example.com", Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "invalid-credentials", e.Code)
	assert.NotEmpty(t, e.Message)
}

func testInvalidBody(t *testing.T) {
	ts := newServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-request", decodeError(t, rec).Code)
}

func testProtectedRoutes(t *testing.T) {
	ts := newServer(t)

	for _, path := range []string{
		"/api/auth/profile",
		"/api/purchase/my-purchases",
		"/api/referral/stats",
		"/api/referral/earnings",
	} {
		rec := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Code, path)

		rec = ts.do(t, http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	// a token signed with another secret is refused
	other := newServer(t)
	token := other.login(t, "alice")
	cfg := testConfig()
	cfg.JWTSecret = "another-secret"
	srv, err := api.New(context.Background(), logging.NewTestLogger(), cfg, ts.accounts, ts.purchases, ts.queries, ts.hub)
	require.NoError(t, err)
	ts.handler = srv.Handler()
	rec := ts.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPurchaseRoutes(t *testing.T) {
	t.Run("purchase is recorded and paid", testCreatePurchase)
	t.Run("purchase below the minimum", testCreatePurchaseBelowMinimum)
	t.Run("sub-cent values are rejected", testCreatePurchaseTooPrecise)
	t.Run("storage failures are retryable", testCreatePurchaseStorageFailure)
	t.Run("unknown errors are not leaked", testCreatePurchaseUnknownError)
	t.Run("my purchases", testMyPurchases)
}

func testCreatePurchase(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	purchase := &types.Purchase{
		ID:          "p1",
		AccountID:   "buyer",
		Amount:      num.MustDecimalFromString("2500"),
		Profit:      num.MustDecimalFromString("2000"),
		ProductName: "widget",
		Status:      types.PurchaseStatusRecorded,
		CreatedAt:   testNow,
	}
	commissions := []*types.Commission{
		{ID: "c1", BeneficiaryID: "s", SourceID: "buyer", PurchaseID: "p1", Amount: num.MustDecimalFromString("100"), Level: types.CommissionLevel1, Percentage: 5, CreatedAt: testNow},
		{ID: "c2", BeneficiaryID: "g", SourceID: "buyer", PurchaseID: "p1", Amount: num.MustDecimalFromString("20"), Level: types.CommissionLevel2, Percentage: 1, CreatedAt: testNow},
	}
	ts.purchases.EXPECT().RecordPurchaseAndDistribute(gomock.Any(), types.AccountID("buyer"), gomock.Any(), gomock.Any(), "widget").
		DoAndReturn(func(_ context.Context, _ types.AccountID, amount, profit num.Decimal, _ string) (*types.Purchase, []*types.Commission, error) {
			assert.True(t, amount.Equal(num.MustDecimalFromString("2500")))
			assert.True(t, profit.Equal(num.MustDecimalFromString("2000")))
			return purchase, commissions, nil
		})

	rec := ts.do(t, http.MethodPost, "/api/purchase/create", token,
		map[string]interface{}{"amount": 2500, "profit": "2000", "productName": "widget"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := api.PurchaseResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.Purchase.ID)
	assert.Equal(t, "recorded", resp.Purchase.Status)
	require.Len(t, resp.Earnings, 2)
	assert.True(t, resp.Earnings[0].Amount.Equal(num.MustDecimalFromString("100")))
	assert.Equal(t, uint8(2), resp.Earnings[1].Level)
}

func testCreatePurchaseBelowMinimum(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	ts.purchases.EXPECT().RecordPurchaseAndDistribute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil, types.ErrBelowMinimumPurchaseAmount(num.DecimalFromInt64(999), num.DecimalFromInt64(1000)))

	rec := ts.do(t, http.MethodPost, "/api/purchase/create", token,
		map[string]interface{}{"amount": 999, "profit": 100, "productName": "widget"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "below-minimum-purchase", e.Code)
	assert.Contains(t, e.Message, "999")
}

func testCreatePurchaseTooPrecise(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	ts.purchases.EXPECT().RecordPurchaseAndDistribute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil, types.ErrInvalidPrecision("profit", num.MustDecimalFromString("0.305")))

	rec := ts.do(t, http.MethodPost, "/api/purchase/create", token,
		map[string]interface{}{"amount": 1000, "profit": "0.305", "productName": "widget"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "too-many-decimals", e.Code)
	assert.Contains(t, e.Message, "0.305")
}

func testCreatePurchaseStorageFailure(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	ts.purchases.EXPECT().RecordPurchaseAndDistribute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil, types.StorageFailure(errors.New("connection refused")))

	rec := ts.do(t, http.MethodPost, "/api/purchase/create", token,
		map[string]interface{}{"amount": 1000, "profit": 100, "productName": "widget"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "storage-failure", decodeError(t, rec).Code)
}

func testCreatePurchaseUnknownError(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	ts.purchases.EXPECT().RecordPurchaseAndDistribute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("secret internals"))

	rec := ts.do(t, http.MethodPost, "/api/purchase/create", token,
		map[string]interface{}{"amount": 1000, "profit": 100, "productName": "widget"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "internal", e.Code)
	assert.False(t, strings.Contains(e.Message, "secret"))
}

func testMyPurchases(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "buyer")

	ts.queries.EXPECT().Purchases(gomock.Any(), types.AccountID("buyer")).Return([]*types.Purchase{
		{ID: "p2", AccountID: "buyer", Amount: num.DecimalFromInt64(1000), Profit: num.DecimalFromInt64(1), Status: types.PurchaseStatusRecorded, CreatedAt: testNow},
		{ID: "p1", AccountID: "buyer", Amount: num.DecimalFromInt64(1000), Profit: num.DecimalFromInt64(1), Status: types.PurchaseStatusRecorded, CreatedAt: testNow},
	}, nil)

	rec := ts.do(t, http.MethodGet, "/api/purchase/my-purchases", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := []api.Purchase{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "p2", out[0].ID)
}

func TestReferralRoutes(t *testing.T) {
	ts := newServer(t)
	token := ts.login(t, "g")

	commission := &types.Commission{ID: "c1", BeneficiaryID: "g", SourceID: "p", PurchaseID: "p1", Amount: num.MustDecimalFromString("20"), Level: types.CommissionLevel2, Percentage: 1, CreatedAt: testNow}

	ts.queries.EXPECT().ReferralStats(gomock.Any(), types.AccountID("g")).Return(&types.ReferralStats{
		ReferralCode:         "CODEG1",
		TotalEarnings:        num.MustDecimalFromString("20"),
		Level1Earnings:       num.DecimalZero(),
		Level2Earnings:       num.MustDecimalFromString("20"),
		DirectReferrals:      []*types.Account{testAccount("s")},
		SecondLevelReferrals: []*types.Account{testAccount("p")},
		RecentCommissions:    []*types.Commission{commission},
	}, nil)

	rec := ts.do(t, http.MethodGet, "/api/referral/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := api.StatsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "CODEG1", stats.ReferralCode)
	require.Len(t, stats.Level2Referrals, 1)
	assert.Equal(t, "p", stats.Level2Referrals[0].ID)
	require.Len(t, stats.RecentEarnings, 1)

	ts.queries.EXPECT().Earnings(gomock.Any(), types.AccountID("g")).Return(&earnings.Report{
		Summary: types.EarningsSummary{
			Total:            num.MustDecimalFromString("20"),
			Level1Total:      num.DecimalZero(),
			Level2Total:      num.MustDecimalFromString("20"),
			TransactionCount: 1,
		},
		Commissions: []*types.Commission{commission},
		SourceNames: map[types.AccountID]string{"p": "Purchaser"},
	}, nil)

	rec = ts.do(t, http.MethodGet, "/api/referral/earnings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := api.EarningsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, uint64(1), report.Summary.TotalTransactions)
	assert.True(t, report.Summary.Level2Total.Equal(num.MustDecimalFromString("20")))
	require.Len(t, report.Earnings, 1)
	assert.Equal(t, "Purchaser", report.Earnings[0].FromName)
}

func TestTraceID(t *testing.T) {
	ts := newServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "trace-1")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-1", rec.Header().Get("X-Request-Id"))
}

func TestAuthRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountsSvc := mocks.NewMockAccountService(ctrl)
	log := logging.NewTestLogger()

	cfg := testConfig()
	cfg.RateLimit.AuthPerSecond = 0.001
	cfg.RateLimit.AuthBurst = 1
	srv, err := api.New(context.Background(), log, cfg, accountsSvc,
		mocks.NewMockPurchaseService(ctrl), mocks.NewMockQueryService(ctrl), api.NewHub(log, cfg.Websocket))
	require.NoError(t, err)
	handler := srv.Handler()

	accountsSvc.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, accounts.ErrInvalidCredentials).Times(1)

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"x"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, login().Code)
	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too-many-requests", decodeError(t, rec).Code)
}
