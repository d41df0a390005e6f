package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"storeplane/internal/apierr"
	"storeplane/internal/logger"
	"storeplane/pkg/api"
)

// Recover converts a panic anywhere downstream into a 500
// INTERNAL_SERVER_ERROR response instead of taking down the process. The
// raw panic value and stack are attached to the response only when nodeEnv
// is not "production".
func Recover(log *slog.Logger, nodeEnv string) func(http.Handler) http.Handler {
	production := nodeEnv == "production"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				stack := string(debug.Stack())
				logger.FromContext(r.Context(), log).Error("panic recovered", "panic", rec, "stack", stack)

				body := api.ErrorBody{Code: apierr.CodeInternalServerError, Message: "An unexpected error occurred"}
				if !production {
					body.Message = fmt.Sprintf("%v", rec)
					body.Stack = stack
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: body})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
