package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"github.com/jaliph/qrrapido/api"
	"github.com/jaliph/qrrapido/database"
	"github.com/jaliph/qrrapido/store"
	"github.com/jaliph/qrrapido/utils"
)

// CSRFCookie is the cookie holding the form's CSRF token.
const CSRFCookie = "qrrapido_csrf"

// Options configures a Server.
type Options struct {
	Addr string
	// CSRFKey authenticates form tokens. A random key is generated when empty.
	CSRFKey []byte
	// SecureCookies marks cookies Secure and enforces TLS origin checks.
	SecureCookies bool
}

// Server represents the HTTP server
type Server struct {
	handler *api.Handler
	router  http.Handler
	httpSrv *http.Server
}

// NewServer creates a new HTTP server. history may be nil.
func NewServer(sessions *store.SessionStore, history database.History, opts Options) (*Server, error) {
	key := opts.CSRFKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
		}
	}

	s := &Server{
		handler: api.NewHandler(sessions, history, opts.SecureCookies),
	}
	s.router = s.routes(key, opts.SecureCookies)
	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(csrfKey []byte, secure bool) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handler.HandleHealth).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/state", s.handler.HandleGetState).Methods("GET")
	apiRouter.HandleFunc("/type", s.handler.HandleSelectType).Methods("POST")
	apiRouter.HandleFunc("/size", s.handler.HandleSelectSize).Methods("POST")
	apiRouter.HandleFunc("/generate", s.handler.HandleGenerate).Methods("POST")
	apiRouter.HandleFunc("/download", s.handler.HandleDownload).Methods("GET")
	apiRouter.HandleFunc("/history", s.handler.HandleGetHistory).Methods("GET")
	apiRouter.HandleFunc("/stats", s.handler.HandleGetStats).Methods("GET")

	pageRouter := r.NewRoute().Subrouter()
	if !secure {
		// Must run before csrf.Protect.
		pageRouter.Use(plaintext)
	}
	pageRouter.Use(csrf.Protect(csrfKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName(CSRFCookie),
	))
	pageRouter.HandleFunc("/", s.handler.HandleIndex).Methods("GET")
	pageRouter.HandleFunc("/generate", s.handler.HandleFormGenerate).Methods("POST")

	r.Use(logRequests)
	return r
}

// plaintext marks requests as served over HTTP so the CSRF origin checks
// do not demand an https Referer.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		utils.L().Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Router returns the HTTP handler serving every route.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start() error {
	utils.L().Info("Starting REST API server", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
