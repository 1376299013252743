package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Pools keep one gzip coder per concurrent request instead of allocating a
// fresh one on every call; Reset rebinds them to the next stream.
var (
	gzipWriterPool = sync.Pool{New: func() any { return gzip.NewWriter(io.Discard) }}
	gzipReaderPool = sync.Pool{New: func() any { return new(gzip.Reader) }}
)

// withGZip inflates gzipped request bodies and compresses responses for
// clients that advertise gzip in Accept-Encoding. Identity requests pass
// through untouched.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.Header.Get("Content-Encoding"), "gzip") && req.Body != nil {
			if err := inflateRequestBody(req); err != nil {
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
		}

		if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, req)
			return
		}

		zw := gzipWriterPool.Get().(*gzip.Writer)
		zw.Reset(w)

		compressed := &gzipResponseWriter{ResponseWriter: w, gzipWriter: zw}
		next.ServeHTTP(compressed, req)

		compressed.Close()
		gzipWriterPool.Put(zw)
	})
}

// inflateRequestBody swaps the request body for its decompressed stream and
// drops Content-Encoding so downstream decoding sees plain JSON. The pooled
// reader is returned when the server closes the body after the handler.
func inflateRequestBody(req *http.Request) error {
	zr := gzipReaderPool.Get().(*gzip.Reader)
	if err := zr.Reset(req.Body); err != nil {
		gzipReaderPool.Put(zr)
		return err
	}

	req.Body = &wrappedReadCloser{
		Reader: zr,
		OnClose: func() {
			zr.Close()
			gzipReaderPool.Put(zr)
		},
	}
	req.Header.Del("Content-Encoding")

	return nil
}

// wrappedReadCloser lets a pooled decoder ride along with the request body
// and return to its pool when the body is closed.
type wrappedReadCloser struct {
	io.Reader
	OnClose func()
}

func (w *wrappedReadCloser) Close() error {
	if w.OnClose != nil {
		w.OnClose()
	}
	return nil
}

// gzipResponseWriter compresses everything written through it. The encoding
// header is stamped in WriteHeader, before the status line is committed.
type gzipResponseWriter struct {
	http.ResponseWriter
	gzipWriter *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Set("Content-Encoding", "gzip")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzipWriter.Write(data)
}

// Close flushes the compressed stream. The middleware calls it after the
// handler returns and before the writer goes back to the pool.
func (w *gzipResponseWriter) Close() error {
	return w.gzipWriter.Close()
}
