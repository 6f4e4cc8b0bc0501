package middleware

import (
	"context"
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader 請求 ID 的 header 名稱
const RequestIDHeader = "X-Request-Id"

// maxInboundID 接受外部傳入 request id 的最大長度
const maxInboundID = 128

// RequestID 為每個請求指定 ID：沿用合法的外部 X-Request-Id，否則產生 UUID。
// ID 會寫回 response header，並放進 chi 的 context key，GetReqId 可取回。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxInboundID {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimid.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}

// GetReqIdShort 取 UUID 的第一段，方便在人讀的 log 中辨識
func GetReqIdShort(r *http.Request) string {
	str := GetReqId(r)
	if i := strings.Index(str, "-"); i > 0 {
		return str[:i]
	}
	return str
}
