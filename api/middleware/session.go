package middleware

import (
	"net/http"
	"strings"

	"github.com/davidmarceau/dishpatch-backend/api/responses"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// SessionContext requires the session header on every cart route and
// threads the session id through the request context and logs.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "session id header is required"))
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
