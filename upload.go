/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
)

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// serveUpload stores a raw image body and answers with the URL to put in
// a round.
func serveUpload(cfg *Config, store *imageStore, m *metrics, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		r.Body = http.MaxBytesReader(w, r.Body, store.maxSize+1)

		name, size, err := store.save(r.Body)
		if err != nil {
			status := http.StatusInternalServerError
			result := "error"

			var maxErr *http.MaxBytesError
			switch {
			case errors.Is(err, errEmptyUpload):
				status, result = http.StatusBadRequest, "empty"
			case errors.Is(err, errUploadTooLarge), errors.As(err, &maxErr):
				status, result = http.StatusRequestEntityTooLarge, "too_large"
			case errors.Is(err, errNotAnImage):
				status, result = http.StatusUnsupportedMediaType, "not_image"
			}

			m.uploads.WithLabelValues(result).Inc()
			logf(cfg, "UPLOAD: Rejected upload from %s: %v", realIP(r), err)

			http.Error(w, http.StatusText(status), status)
			return
		}

		m.uploads.WithLabelValues("ok").Inc()

		w.Header().Set("Content-Type", "application/json")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(uploadResponse{ImageURL: cfg.prefix + "/uploads/" + name}); err != nil {
			reportError(errs, err)

			return
		}

		logf(cfg, "UPLOAD: Stored %s (%s) from %s in %s",
			name,
			humanReadableSize(size),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveUploadedImage(cfg *Config, store *imageStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		path, ok := store.path(p.ByName("file"))
		if !ok {
			http.NotFound(w, r)
			return
		}

		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=86400")
		securityHeaders(cfg, w)

		http.ServeFile(w, r, path)
	}
}
