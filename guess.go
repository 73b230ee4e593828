// Guessage
//
// An admin posts a round (row, column and the age to guess, optionally an
// image) and every connected player submits a number. Exact matches score
// a point. Scores and a top-3 leaderboard are pushed to everyone after
// each change.
//
// Features:
// - One room per process, reached at /ws
// - Players identified by display name; "admin" (any case) runs the game
// - Rejoining with a known name takes over that player and its score
// - Admin sees each guess as it arrives; players only see standings
// - Soft reset keeps the roster, hard reset clears everything
// - Round images uploaded through /api/upload-image
// - In-browser QR code to share the game, backed by go-qrcode

package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

const qrSize = 320

// qrHandler generates a PNG QR code pointing at the game page.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Respect TLS and X-Forwarded-Proto when building the link.
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		path := strings.TrimSuffix(r.URL.Path, "/qr") + "/"

		png, err := qrcode.Encode(scheme+"://"+r.Host+path, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

// registerGuessGame wires up the room and its routes:
//   - /ws                → websocket for the room
//   - /api/upload-image  → raw image upload, answers {"imageUrl": ...}
//   - /uploads/:file     → stored round images
//   - /qr                → PNG QR code for the game URL
func registerGuessGame(ctx context.Context, cfg *Config, m *metrics, mux *httprouter.Router, errs chan<- error) (*Hub, error) {
	store, err := newImageStore(cfg.uploadDir, cfg.maxUploadSize)
	if err != nil {
		return nil, err
	}

	var limiter *ipLimiter
	if cfg.uploadRate > 0 {
		limiter = newIPLimiter(rate.Limit(cfg.uploadRate), max(cfg.uploadBurst, 1))
	}

	hub := newHub(cfg, newRoom(cfg), m)
	go hub.run(ctx)

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub))
	mux.POST(cfg.prefix+"/api/upload-image", rateLimited(limiter, serveUpload(cfg, store, m, errs)))
	mux.GET(cfg.prefix+"/uploads/:file", serveUploadedImage(cfg, store))
	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))

	return hub, nil
}
