package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	MinLength int
	// Skipper bypasses compression for matching requests.
	Skipper func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// precompressed content types gain nothing from another compression pass.
var precompressed = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument",
	"application/zip",
	"image/",
}

// brotliWriter buffers the body until MinLength bytes are seen, then
// decides once whether the response is compressed.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	buf       []byte
	br        *brotli.Writer
	decided   bool
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	if w.decided {
		if w.br != nil {
			return w.br.Write(data)
		}
		return w.ResponseWriter.Write(data)
	}

	w.buf = append(w.buf, data...)
	if len(w.buf) < w.minLength {
		return len(data), nil
	}
	if err := w.decide(true); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// decide commits to compressing (when allowed by the content type) and
// drains the buffer.
func (w *brotliWriter) decide(compress bool) error {
	w.decided = true
	if compress && !isPrecompressed(w.Header().Get("Content-Type")) {
		w.Header().Set("Content-Encoding", "br")
		w.Header().Del("Content-Length")
		w.br = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
	}

	if len(w.buf) == 0 {
		return nil
	}
	var err error
	if w.br != nil {
		_, err = w.br.Write(w.buf)
	} else {
		_, err = w.ResponseWriter.Write(w.buf)
	}
	w.buf = nil
	return err
}

// Flush sends short buffered bodies uncompressed so streaming responses
// are not held back.
func (w *brotliWriter) Flush() {
	if !w.decided {
		_ = w.decide(false)
	}
	if w.br != nil {
		_ = w.br.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) close() error {
	if !w.decided {
		return w.decide(false)
	}
	if w.br != nil {
		return w.br.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isUpgrade(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = w
		defer func() {
			if err := w.close(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isUpgrade reports WebSocket handshakes, which must reach the handler unwrapped.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func isPrecompressed(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, p := range precompressed {
		if strings.HasPrefix(ct, p) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
