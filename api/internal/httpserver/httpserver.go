package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// Register wires the liveness endpoints onto mux: "/" answers a static
// payload for external monitors, "/healthz" additionally pings the database.
func Register(mux *http.ServeMux, db *sql.DB) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Bot is running"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
}
