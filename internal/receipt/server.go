package receipt

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// ServerOptions tunes request handling
type ServerOptions struct {
	// MaxUploadSize caps the multipart body in bytes
	MaxUploadSize int64
	// MaxConcurrentScans bounds how many scans run at once; OCR is CPU heavy
	MaxConcurrentScans int64
	// RecognitionTimeout bounds a single scan, zero means no limit
	RecognitionTimeout time.Duration
}

// DefaultServerOptions returns options suitable for a small deployment
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		MaxUploadSize:      50 << 20, // high-resolution phone photos
		MaxConcurrentScans: 2,
		RecognitionTimeout: 60 * time.Second,
	}
}

// Server handles HTTP requests for receipt scanning
type Server struct {
	service *Service
	opts    ServerOptions
	mux     *http.ServeMux
	slots   *semaphore.Weighted
	httpSrv *http.Server
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, opts ServerOptions) *Server {
	return NewServerWithMux(service, opts, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, opts ServerOptions, mux *http.ServeMux) *Server {
	defaults := DefaultServerOptions()
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaults.MaxUploadSize
	}
	if opts.MaxConcurrentScans <= 0 {
		opts.MaxConcurrentScans = defaults.MaxConcurrentScans
	}

	s := &Server{
		service: service,
		opts:    opts,
		mux:     mux,
		slots:   semaphore.NewWeighted(opts.MaxConcurrentScans),
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/ocr/receipt", s.handleScanReceipt)
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
}

// acquireScanSlot blocks until a scan may run or the request goes away
func (s *Server) acquireScanSlot(ctx context.Context) (release func(), err error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.slots.Release(1) }, nil
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}
