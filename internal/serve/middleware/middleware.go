// Package middleware holds the chi middleware chain internal/serve
// wraps every route with, adapted from the teacher's
// internal/serve/middleware package down to what a non-goals: no
// authentication enforcement (spec.md §1) service actually needs:
// panic recovery, CORS, and request logging.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/stellar/go/support/http/mutil"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/serve/httperror"
)

// RecoverHandler recovers from panics in downstream handlers and
// reports them as a 500 rather than crashing the process.
func RecoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			if errors.Is(err, http.ErrAbortHandler) {
				panic(err)
			}

			ctx := req.Context()
			log.Ctx(ctx).WithStack(err).Error(err)
			httperror.InternalError(ctx, "", err, nil).Render(rw)
		}()

		next.ServeHTTP(rw, req)
	})
}

// CorsMiddleware restricts cross-origin requests to corsAllowedOrigins.
func CorsMiddleware(corsAllowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		c := cors.New(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedHeaders: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		})
		return c.Handler(next)
	}
}

// LoggingMiddleware logs one line per request with its chi request ID,
// method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		mw := mutil.WrapWriter(rw)
		then := time.Now()

		ctx := req.Context()
		logCtx := log.Set(ctx, log.Ctx(ctx).WithFields(map[string]interface{}{
			"method": req.Method,
			"path":   req.URL.String(),
			"req":    middleware.GetReqID(ctx),
		}))
		req = req.WithContext(logCtx)

		next.ServeHTTP(mw, req)

		log.Ctx(logCtx).WithFields(map[string]interface{}{
			"status":   mw.Status(),
			"duration": time.Since(then).String(),
		}).Info("request handled")
	})
}
