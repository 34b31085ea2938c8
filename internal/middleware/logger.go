package middleware

import (
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger prints one line per request with status, size and latency
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		marker := "→"
		if status >= 500 {
			marker = "❌"
		} else if status >= 400 {
			marker = "⚠️ "
		}

		fmt.Printf("%s %s %s %d %dB %s [%s]\n",
			marker,
			r.Method,
			r.URL.RequestURI(),
			status,
			ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond),
			chimiddleware.GetReqID(r.Context()),
		)
	})
}
