package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fishingindustry/catalog/app/api"
	"github.com/fishingindustry/catalog/app/auth"
	"github.com/fishingindustry/catalog/app/fish"
	"github.com/fishingindustry/catalog/app/vessels"
	"github.com/fishingindustry/catalog/app/zones"
)

type Handlers struct {
	Fish    *fish.FishHandler
	Zones   *zones.ZoneHandler
	Vessels *vessels.VesselHandler
}

type Options struct {
	AdminToken      string
	UploadsRoot     string
	MaxRequestBytes int64
}

// NewRouter registers every catalog route. Reads are public; writes go
// through the token check and a request body cap.
func NewRouter(h Handlers, opts Options, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	requireToken := auth.RequireToken(opts.AdminToken, logger)
	write := func(fn http.HandlerFunc) http.Handler {
		return requireToken(limitBody(opts.MaxRequestBytes, fn))
	}

	mux.HandleFunc("GET /fish", h.Fish.HandleGet)
	mux.HandleFunc("GET /fish/new", h.Fish.HandleNewForm)
	mux.HandleFunc("GET /fish/{id}", h.Fish.HandleGetFishType)
	mux.HandleFunc("GET /fish/{id}/edit", h.Fish.HandleEditForm)
	mux.Handle("POST /fish", write(h.Fish.HandleCreate))
	mux.Handle("PUT /fish/{id}", write(h.Fish.HandleUpdate))
	mux.Handle("DELETE /fish/{id}", write(h.Fish.HandleDelete))

	mux.HandleFunc("GET /zones", h.Zones.HandleGetAll)
	mux.HandleFunc("GET /zones/new", h.Zones.HandleNewForm)
	mux.HandleFunc("GET /zones/{id}", h.Zones.HandleGet)
	mux.HandleFunc("GET /zones/{id}/edit", h.Zones.HandleEditForm)
	mux.Handle("POST /zones", write(h.Zones.HandleCreate))
	mux.Handle("PUT /zones/{id}", write(h.Zones.HandleUpdate))
	mux.Handle("DELETE /zones/{id}", write(h.Zones.HandleDelete))

	mux.HandleFunc("GET /vessels", h.Vessels.HandleGetAll)
	mux.HandleFunc("GET /vessels/{id}", h.Vessels.HandleGet)
	mux.Handle("POST /vessels", write(h.Vessels.HandleCreate))
	mux.Handle("PUT /vessels/{id}", write(h.Vessels.HandleUpdate))
	mux.Handle("DELETE /vessels/{id}", write(h.Vessels.HandleDelete))

	mux.Handle("GET /images/", imageFiles(opts.UploadsRoot))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		api.OKResponse(w, map[string]string{"status": "ok"})
	})

	return logRequests(logger, mux)
}

func limitBody(limit int64, next http.Handler) http.Handler {
	if limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// imageFiles serves stored uploads. Saved paths already start with
// /images/, so the root is served as is. Directory listings are refused.
func imageFiles(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
