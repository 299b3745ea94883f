package api

import (
	"net/http"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/julienschmidt/httprouter"
)

func newAuthLimiter(cfg RateLimitConfig) *limiter.Limiter {
	if !cfg.Enabled {
		return nil
	}
	lmt := tollbooth.NewLimiter(cfg.AuthPerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: cfg.TTL.Duration,
	})
	lmt.SetBurst(cfg.AuthBurst)
	return lmt
}

// rateLimited rejects the request when its address went over the limit.
func (s *Server) rateLimited(h httprouter.Handle) httprouter.Handle {
	if s.authLimiter == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := tollbooth.LimitByRequest(s.authLimiter, w, r); err != nil {
			s.writeError(w, r, ErrTooManyRequests)
			return
		}
		h(w, r, ps)
	}
}
