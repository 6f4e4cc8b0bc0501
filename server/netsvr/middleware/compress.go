package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// CompressConfig
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// compressor 每個設定各自持有 encoder pool
type compressor struct {
	cfg      CompressConfig
	gzipPool sync.Pool
	zstdPool sync.Pool
}

func (c *compressor) getZstdWriter(w io.Writer) *zstd.Encoder {
	if v := c.zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw
	}
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.cfg.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return zw
}

func (c *compressor) releaseZstdWriter(zw *zstd.Encoder) {
	_ = zw.Close()
	c.zstdPool.Put(zw)
}

func (c *compressor) getGzipWriter(w io.Writer) *gzip.Writer {
	if v := c.gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw
	}
	gw, err := gzip.NewWriterLevel(w, c.cfg.GzipLevel)
	if err != nil {
		gw = gzip.NewWriter(w)
	}
	return gw
}

func (c *compressor) releaseGzipWriter(gw *gzip.Writer) {
	_ = gw.Close()
	c.gzipPool.Put(gw)
}

// negotiate 依 Accept-Encoding 的 q 值選出 zstd / gzip；q 相同時偏好 zstd，都不接受時回傳 ""。
func negotiate(accept string) string {
	qs := map[string]float64{}
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		q := 1.0
		if k, v, ok := strings.Cut(strings.TrimSpace(params), "="); ok && strings.TrimSpace(k) == "q" {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = f
			}
		}
		qs[name] = q
	}
	pick := func(enc string) float64 {
		if q, ok := qs[enc]; ok {
			return q
		}
		if q, ok := qs["*"]; ok {
			return q
		}
		return 0
	}
	zq, gq := pick("zstd"), pick("gzip")
	switch {
	case zq > 0 && zq >= gq:
		return "zstd"
	case gq > 0:
		return "gzip"
	default:
		return ""
	}
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer // 指向 gzip.Writer 或 zstd.Encoder
	disabled bool      // 標記是否動態取消壓縮
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	// 已停用壓縮 (204/304)，直接寫入底層
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.w.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")

	// 動態偵測是否應該取消壓縮 (204/304/1xx)
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}

	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// --- Middleware 入口 ---

// Compression 以預設設定壓縮回應
var Compression = Compress(DefaultCompressConfig)

// Compress 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。
func Compress(cfg CompressConfig) func(http.Handler) http.Handler {
	c := &compressor{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket / Head / 已壓縮
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}

			switch negotiate(r.Header.Get("Accept-Encoding")) {
			case "zstd":
				w.Header().Set("Content-Encoding", "zstd")
				w.Header().Add("Vary", "Accept-Encoding")
				zw := c.getZstdWriter(w)
				cw := &compressResponseWriter{ResponseWriter: w, w: zw}
				defer func() {
					// 204/304 時丟棄 Close() 產生的 footer
					if cw.disabled {
						zw.Reset(io.Discard)
					}
					c.releaseZstdWriter(zw)
				}()
				next.ServeHTTP(cw, r)

			case "gzip":
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Add("Vary", "Accept-Encoding")
				gw := c.getGzipWriter(w)
				cw := &compressResponseWriter{ResponseWriter: w, w: gw}
				defer func() {
					if cw.disabled {
						gw.Reset(io.Discard)
					}
					c.releaseGzipWriter(gw)
				}()
				next.ServeHTTP(cw, r)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
