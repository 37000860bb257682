package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/pixelcutlabs/propellic-pulse/internal/api"
	"github.com/pixelcutlabs/propellic-pulse/internal/middleware"
	"github.com/pixelcutlabs/propellic-pulse/internal/utils"
)

func main() {
	addr := utils.SafeEnv("PULSE_ADDR", ":8080")
	commit := os.Getenv("PULSE_COMMIT")
	buildTime := os.Getenv("PULSE_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Propellic Pulse API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Serve the built dashboard/survey frontend when provided.
	if staticDir := os.Getenv("PULSE_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.SecureHeaders(middleware.CORS(middleware.WithAuth(mux))))

	log.Printf("Propellic Pulse server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
