package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	acceptEncodingHeader  = "Accept-Encoding"
	contentEncodingHeader = "Content-Encoding"
	contentLengthHeader   = "Content-Length"
	varyHeader            = "Vary"
	gzipEncoding          = "gzip"
)

var gzipWriters = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Del(contentLengthHeader)
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	n, err := w.gz.Write(p)

	if err != nil {
		return n, errors.Wrap(err, "write compressed")
	}

	return n, nil
}

type gzipBody struct {
	body io.ReadCloser
	gz   *gzip.Reader
}

func (b *gzipBody) Read(p []byte) (int, error) {
	n, err := b.gz.Read(p)

	if err != nil && !errors.Is(err, io.EOF) {
		return n, errors.Wrap(err, "read compressed")
	}

	return n, err //nolint:wrapcheck // io.EOF must stay unwrapped
}

func (b *gzipBody) Close() error {
	gzErr := b.gz.Close()

	if err := b.body.Close(); err != nil {
		return errors.Wrap(err, "close body")
	}

	return errors.Wrap(gzErr, "close gzip reader")
}

// ResponseEncoder возвращает посредника, который сжимает тело ответа gzip,
// если клиент указал поддержку gzip в заголовке Accept-Encoding.
func ResponseEncoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(varyHeader, acceptEncodingHeader)

		if !strings.Contains(r.Header.Get(acceptEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		gz, ok := gzipWriters.Get().(*gzip.Writer)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		defer gzipWriters.Put(gz)

		gz.Reset(w)
		defer func() {
			_ = gz.Close()
		}()

		w.Header().Set(contentEncodingHeader, gzipEncoding)
		h.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gz: gz}, r)
	})
}

// RequestDecoder возвращает посредника, который распаковывает тело запроса,
// сжатое gzip. Некорректное сжатое тело отклоняется с кодом 400.
func RequestDecoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get(contentEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "failed to decompress request", http.StatusBadRequest)
			return
		}

		body := &gzipBody{body: r.Body, gz: gz}
		defer func() {
			_ = body.Close()
		}()

		r.Body = body
		r.Header.Del(contentEncodingHeader)
		r.Header.Del(contentLengthHeader)
		r.ContentLength = -1

		h.ServeHTTP(w, r)
	})
}
