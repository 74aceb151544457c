package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Recovery возвращает посредника, который перехватывает панику обработчика,
// логирует ее и отвечает кодом 500.
func Recovery(logger *zap.Logger) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("uri", r.RequestURI),
					zap.Stack("stack"))
				w.WriteHeader(http.StatusInternalServerError)
			}()

			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(f)
	}
}
