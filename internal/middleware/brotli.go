package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const defaultCompressMinLength = 1024

// Compression brotli-encodes response bodies for clients that accept "br".
// Output is held back until it reaches minLength bytes, so short envelopes
// (errors, health) go out as-is. Routes listed in skipPaths are never touched.
func Compression(minLength int, skipPaths ...string) gin.HandlerFunc {
	if minLength <= 0 {
		minLength = defaultCompressMinLength
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok || streaming(c.Request) {
			c.Next()
			return
		}

		// The representation depends on Accept-Encoding whether or not this
		// particular client gets brotli.
		c.Header("Vary", "Accept-Encoding")
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		cw := &compressWriter{ResponseWriter: c.Writer, threshold: minLength}
		c.Writer = cw
		defer func() {
			if err := cw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// compressWriter buffers until threshold, then switches to a brotli stream
// for the rest of the response. A flush before the threshold commits the
// response to identity encoding.
type compressWriter struct {
	gin.ResponseWriter
	threshold   int
	pending     []byte
	enc         *brotli.Writer
	passthrough bool
}

func (w *compressWriter) Write(p []byte) (int, error) {
	switch {
	case w.enc != nil:
		return w.enc.Write(p)
	case w.passthrough:
		return w.ResponseWriter.Write(p)
	}
	w.pending = append(w.pending, p...)
	if len(w.pending) < w.threshold {
		return len(p), nil
	}

	h := w.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	w.enc = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
	if _, err := w.enc.Write(w.pending); err != nil {
		return 0, err
	}
	w.pending = nil
	return len(p), nil
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush pushes out whatever is buffered, compressed or not.
func (w *compressWriter) Flush() {
	if w.enc != nil {
		_ = w.enc.Flush()
	} else {
		w.passthrough = true
		if len(w.pending) > 0 {
			_, _ = w.ResponseWriter.Write(w.pending)
			w.pending = nil
		}
	}
	w.ResponseWriter.Flush()
}

func (w *compressWriter) finish() error {
	if w.enc != nil {
		return w.enc.Close()
	}
	if len(w.pending) == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.pending)
	w.pending = nil
	return err
}

// streaming reports requests whose bodies must pass through unbuffered.
func streaming(r *http.Request) bool {
	return r.Method == http.MethodHead ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// Drop any ";q=" weight.
		name, q, _ := strings.Cut(enc, ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(q), " ", "") != "q=0"
	}
	return false
}
