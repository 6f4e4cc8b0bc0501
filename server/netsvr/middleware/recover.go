package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/server/httperr"
)

// Recover 攔截 handler 的 panic：記錄 stack 後回傳 500。
// http.ErrAbortHandler 照常往外拋，讓 net/http 中止連線。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				if log != nil {
					log.Error("http.panic",
						slog.String("request_id", GetReqId(r)),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rvr),
						slog.String("stack", string(debug.Stack())),
					)
				}
				httperr.Errs(w, errs.NewFatal("internal server error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
