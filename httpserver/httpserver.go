package httpserver

import (
	"context"
	"net/http"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"imageratio/config"
	"imageratio/db"
)

// APIPath is the path every API call is posted to.
const APIPath = "/_imageratio"

// ProfileStore is used to define where named rule sets live.
type ProfileStore interface {
	GetProfile(ctx context.Context, name string) (*db.Profile, error)
	ListProfiles(ctx context.Context) ([]*db.Profile, error)
	InsertProfile(ctx context.Context, p *db.Profile) error
	DeleteProfile(ctx context.Context, name string) error
}

// ObjectFetcher is used to define where stored images are read from.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Server is used to define the HTTP server.
type Server struct {
	Config           *config.Config
	SudoKeyValidator func(string) bool
	Logger           *zap.Logger

	// DB is nil when profiles are not configured.
	DB ProfileStore

	// Objects is nil when object storage is not configured.
	Objects ObjectFetcher

	// Profiles caches profile lookups. Optional.
	Profiles *cache.Cache

	// Limiter throttles API calls. Optional.
	Limiter *rate.Limiter
}

// ServeHTTP is used to serve a HTTP request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == "POST" && r.URL.Path == APIPath {
		s.api(w, r)
		return
	}

	// Handle if this is a OPTIONS request.
	if r.Method == "OPTIONS" {
		supportedMethods := "OPTIONS"
		if r.URL.Path == APIPath {
			supportedMethods += ", POST"
		}
		w.Header().Set("Access-Control-Allow-Methods", supportedMethods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Json-Body, X-Type")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Max-Age", "600")
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Cache-Control", "max-age=600")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not Found"))
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
