package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"code.tierpay.io/referral/core/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const tokenIssuer = "referral-node"

type Claims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

type accountKey struct{}

func accountFromContext(ctx context.Context) types.AccountID {
	id, _ := ctx.Value(accountKey{}).(types.AccountID)
	return id
}

func (s *Server) issueToken(accountID types.AccountID) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config().TokenExpiry.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   accountID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (types.AccountID, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return "", ErrUnauthorized
	}
	return types.AccountID(claims.AccountID), nil
}

// bearerToken reads the token from the Authorization header, falling back
// on the token query parameter browsers use for websockets.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// authenticated only calls h for requests carrying a valid token, the
// account is then available from the request context.
func (s *Server) authenticated(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw := bearerToken(r)
		if raw == "" {
			s.writeError(w, r, ErrUnauthorized)
			return
		}
		accountID, err := s.parseToken(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, accountID)), ps)
	}
}
