package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"code.tierpay.io/referral/core/earnings"
	"code.tierpay.io/referral/core/types"
	rctx "code.tierpay.io/referral/libs/context"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"

	"github.com/julienschmidt/httprouter"
)

const maxBodySize = 1 << 20

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PurchaseRequest struct {
	Amount      num.Decimal `json:"amount"`
	Profit      num.Decimal `json:"profit"`
	ProductName string      `json:"productName"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Referral struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProfileResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	ReferralCode    string      `json:"referralCode"`
	ReferredBy      string      `json:"referredBy,omitempty"`
	TotalEarnings   num.Decimal `json:"totalEarnings"`
	Level1Earnings  num.Decimal `json:"level1Earnings"`
	Level2Earnings  num.Decimal `json:"level2Earnings"`
	DirectReferrals []Referral  `json:"directReferrals"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type Purchase struct {
	ID          string      `json:"id"`
	AccountID   string      `json:"userId"`
	Amount      num.Decimal `json:"amount"`
	Profit      num.Decimal `json:"profit"`
	ProductName string      `json:"productName"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Earning struct {
	ID         string      `json:"id"`
	FromUserID string      `json:"fromUserId"`
	FromName   string      `json:"fromName,omitempty"`
	PurchaseID string      `json:"purchaseId"`
	Amount     num.Decimal `json:"amount"`
	Level      uint8       `json:"level"`
	Percentage int64       `json:"percentage"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type PurchaseResponse struct {
	Message  string    `json:"message"`
	Purchase Purchase  `json:"purchase"`
	Earnings []Earning `json:"earnings"`
}

type StatsResponse struct {
	TotalEarnings   num.Decimal `json:"totalEarnings"`
	Level1Earnings  num.Decimal `json:"level1Earnings"`
	Level2Earnings  num.Decimal `json:"level2Earnings"`
	DirectReferrals []Referral  `json:"directReferrals"`
	Level2Referrals []Referral  `json:"level2Referrals"`
	RecentEarnings  []Earning   `json:"recentEarnings"`
	ReferralCode    string      `json:"referralCode"`
}

type EarningsSummary struct {
	TotalEarnings     num.Decimal `json:"totalEarnings"`
	Level1Total       num.Decimal `json:"level1Total"`
	Level2Total       num.Decimal `json:"level2Total"`
	TotalTransactions uint64      `json:"totalTransactions"`
}

type EarningsResponse struct {
	Summary  EarningsSummary `json:"summary"`
	Earnings []Earning       `json:"earnings"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("Register")()

	req := RegisterRequest{}
	if err := unmarshalBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Name, req.Email, req.Password, req.ReferralCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, account, http.StatusCreated)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("Login")()

	req := LoginRequest{}
	if err := unmarshalBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, account, http.StatusOK)
}

func (s *Server) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("Profile")()

	profile, err := s.queries.Profile(r.Context(), accountFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a := profile.Account
	writeJSON(w, ProfileResponse{
		ID:              a.ID.String(),
		Name:            a.Name,
		Email:           a.Email,
		ReferralCode:    a.ReferralCode,
		ReferredBy:      a.SponsorID.String(),
		TotalEarnings:   a.TotalEarnings,
		Level1Earnings:  a.Level1Earnings,
		Level2Earnings:  a.Level2Earnings,
		DirectReferrals: referralsFromAccounts(profile.DirectReferrals),
		CreatedAt:       a.CreatedAt,
	}, http.StatusOK)
}

func (s *Server) CreatePurchase(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("CreatePurchase")()

	req := PurchaseRequest{}
	if err := unmarshalBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	purchase, commissions, err := s.purchases.RecordPurchaseAndDistribute(
		r.Context(), accountFromContext(r.Context()), req.Amount, req.Profit, req.ProductName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, PurchaseResponse{
		Message:  "Purchase created and earnings distributed successfully",
		Purchase: purchaseFromType(purchase),
		Earnings: earningsFromCommissions(commissions, nil),
	}, http.StatusCreated)
}

func (s *Server) MyPurchases(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("MyPurchases")()

	purchases, err := s.queries.Purchases(r.Context(), accountFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]Purchase, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, purchaseFromType(p))
	}
	writeJSON(w, out, http.StatusOK)
}

func (s *Server) ReferralStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("ReferralStats")()

	stats, err := s.queries.ReferralStats(r.Context(), accountFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, StatsResponse{
		TotalEarnings:   stats.TotalEarnings,
		Level1Earnings:  stats.Level1Earnings,
		Level2Earnings:  stats.Level2Earnings,
		DirectReferrals: referralsFromAccounts(stats.DirectReferrals),
		Level2Referrals: referralsFromAccounts(stats.SecondLevelReferrals),
		RecentEarnings:  earningsFromCommissions(stats.RecentCommissions, nil),
		ReferralCode:    stats.ReferralCode,
	}, http.StatusOK)
}

func (s *Server) Earnings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.StartAPIRequestAndTimeREST("Earnings")()

	report, err := s.queries.Earnings(r.Context(), accountFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, earningsResponse(report), http.StatusOK)
}

func (s *Server) Websocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		s.log.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	s.hub.serve(s.ctx, conn, accountFromContext(r.Context()))
}

func (s *Server) writeAuth(w http.ResponseWriter, r *http.Request, account *types.Account, status int) {
	token, err := s.issueToken(account.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, AuthResponse{
		Token: token,
		User: User{
			ID:           account.ID.String(),
			Name:         account.Name,
			Email:        account.Email,
			ReferralCode: account.ReferralCode,
		},
	}, status)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body, known := classify(err)
	if !known {
		_, traceID := rctx.TraceIDFromContext(r.Context())
		s.log.Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("trace-id", traceID),
			logging.Error(err),
		)
	}
	writeJSON(w, body, status)
}

func earningsResponse(report *earnings.Report) EarningsResponse {
	return EarningsResponse{
		Summary: EarningsSummary{
			TotalEarnings:     report.Summary.Total,
			Level1Total:       report.Summary.Level1Total,
			Level2Total:       report.Summary.Level2Total,
			TotalTransactions: report.Summary.TransactionCount,
		},
		Earnings: earningsFromCommissions(report.Commissions, report.SourceNames),
	}
}

func referralsFromAccounts(accounts []*types.Account) []Referral {
	out := make([]Referral, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, Referral{
			ID:        a.ID.String(),
			Name:      a.Name,
			Email:     a.Email,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

func earningsFromCommissions(commissions []*types.Commission, names map[types.AccountID]string) []Earning {
	out := make([]Earning, 0, len(commissions))
	for _, c := range commissions {
		out = append(out, Earning{
			ID:         c.ID,
			FromUserID: c.SourceID.String(),
			FromName:   names[c.SourceID],
			PurchaseID: c.PurchaseID.String(),
			Amount:     c.Amount,
			Level:      uint8(c.Level),
			Percentage: c.Percentage,
			CreatedAt:  c.CreatedAt,
		})
	}
	return out
}

func purchaseFromType(p *types.Purchase) Purchase {
	return Purchase{
		ID:          p.ID.String(),
		AccountID:   p.AccountID.String(),
		Amount:      p.Amount,
		Profit:      p.Profit,
		ProductName: p.ProductName,
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
	}
}

func unmarshalBody(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return ErrInvalidRequest
	}
	if err := json.Unmarshal(body, into); err != nil {
		return ErrInvalidRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(data)
	w.Write(buf)
}
