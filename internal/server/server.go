package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/pfrederiksen/walker-events/internal/logger"
)

// IndexText is returned by the liveness route
const IndexText = "walker-events bot is running"

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// CallbackHandler consumes a verified webhook delivery
type CallbackHandler interface {
	HandleCallback(ctx context.Context, cb *webhook.CallbackRequest)
}

// Server routes HTTP requests to the bot
type Server struct {
	channelSecret string
	handler       CallbackHandler
	metrics       *logger.Metrics
	log           *logger.Logger
	router        *mux.Router
}

// Option customises a Server
type Option func(*Server)

// WithLogger replaces the default logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics replaces the default metrics tracker served at /metrics
func WithMetrics(m *logger.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a Server that verifies requests with channelSecret
func New(channelSecret string, handler CallbackHandler, opts ...Option) *Server {
	s := &Server{
		channelSecret: channelSecret,
		handler:       handler,
		metrics:       logger.DefaultMetrics(),
		log:           logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/callback", s.handleCallback).Methods(http.MethodPost)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(IndexText))
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r)
	s.metrics.IncrCounter("webhook.received")

	cb, err := webhook.ParseRequest(s.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			s.metrics.IncrCounter("webhook.invalid_signature")
			log.Warn("Rejected webhook with invalid signature", nil)
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		s.metrics.IncrCounter("webhook.parse_errors")
		log.Error("Parsing webhook failed", nil, err)
		http.Error(w, "could not parse webhook", http.StatusInternalServerError)
		return
	}

	log.Info("Webhook received", logger.Fields{"events": len(cb.Events)})
	s.handler.HandleCallback(r.Context(), cb)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.metrics.GetSnapshot()); err != nil {
		s.requestLog(r).Error("Encoding metrics failed", nil, err)
	}
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the ID assigned to the request, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestLog(r *http.Request) *logger.Logger {
	return s.log.With(logger.Fields{"request_id": RequestID(r.Context())})
}

// statusRecorder captures the status code for access logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.RecordTiming("http."+r.Method+" "+routeName(r), elapsed)
		s.log.Debug("Request served", logger.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   elapsed.String(),
		})
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
