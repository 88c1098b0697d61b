package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/trusted-tools/ghostjobs/internal/analyzer"
	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/model"
	"github.com/trusted-tools/ghostjobs/internal/reveal"
	_ "github.com/trusted-tools/ghostjobs/internal/server/docs" // registers the OpenAPI document
)

// Client-facing error messages. Causes are logged, never returned.
const (
	msgInvalidJSON    = "invalid JSON"
	msgInvalidURL     = "Invalid URL"
	msgFetchFailed    = "Failed to fetch job page"
	msgSitemapPending = "sitemap not generated yet"

	maxRequestBytes = 1 << 20
	requestIDHeader = "X-Request-ID"
)

type ctxKey int

const requestIDKey ctxKey = iota

// SitemapSource serves the most recently rendered sitemap.
type SitemapSource interface {
	XML() ([]byte, time.Time, error)
}

// Server is the HTTP + WebSocket API surface for the checker.
type Server struct {
	cfg      Config
	analyzer analyzer.Analyzer
	sitemap  SitemapSource
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires the routes around a. sitemap may be nil, in which case
// /sitemap.xml always answers 503.
func NewServer(cfg Config, a analyzer.Analyzer, sitemap SitemapSource) (*Server, error) {
	if a == nil {
		return nil, errors.New("server: nil analyzer")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	s := &Server{
		cfg:      cfg,
		analyzer: a,
		sitemap:  sitemap,
		router:   chi.NewRouter(),
		logger:   logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/health", s.optionsHandler("GET"))
	r.Options("/api/analyze", s.optionsHandler("POST"))
	r.Options("/ws/analyze", s.optionsHandler("GET"))
	r.Options("/sitemap.xml", s.optionsHandler("GET"))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/ws/analyze", s.handleAnalyzeWS)
	r.Get("/sitemap.xml", s.handleSitemap)

	if s.cfg.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

	fields := []logging.Field{
		{Key: "request_id", Value: id},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if r.ContentLength > 0 {
		fields = append(fields, logging.Field{Key: "content_length", Value: r.ContentLength})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// RequestID returns the request ID assigned by ServeHTTP, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Close releases the analyzer.
func (s *Server) Close() error {
	return s.analyzer.Close()
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// decodeAnalyzeRequest reads exactly one JSON value. An empty body decodes as
// the zero request. Content-Type is not checked.
func decodeAnalyzeRequest(r io.Reader) (model.AnalyzeRequest, error) {
	var body model.AnalyzeRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return model.AnalyzeRequest{}, nil
		}
		return model.AnalyzeRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.AnalyzeRequest{}, errors.New("unexpected data after JSON body")
	}
	return body, nil
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /api/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

// handleAnalyze godoc
// @Summary Score a job posting URL
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body model.AnalyzeRequest true "Posting to analyze"
// @Success 200 {object} model.AnalyzeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(logging.Field{Key: "request_id", Value: RequestID(r.Context())})

	body, err := decodeAnalyzeRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		logger.Warn("decoding analyze body", logging.Err(err))
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	target, err := body.TargetURL()
	if err != nil {
		logger.Warn("rejecting analyze request", logging.Err(err))
		writeError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), target)
	if err != nil {
		logger.Error("analyzing posting", logging.Field{Key: "url", Value: target}, logging.Err(err))
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	logger.Info("analyzed posting",
		logging.Field{Key: "url", Value: target},
		logging.Field{Key: "status_code", Value: report.StatusCode},
		logging.Field{Key: "freshness", Value: report.Freshness},
		logging.Field{Key: "score", Value: report.Score})
	writeJSON(w, http.StatusOK, report.Response())
}

// handleSitemap godoc
// @Summary Site map of the landing page and blog
// @Tags site
// @Produce xml
// @Success 200
// @Failure 503 {object} model.ErrorResponse
// @Router /sitemap.xml [get]
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if s.sitemap == nil {
		writeError(w, http.StatusServiceUnavailable, msgSitemapPending)
		return
	}
	doc, generatedAt, err := s.sitemap.XML()
	if err != nil {
		s.logger.Warn("serving sitemap", logging.Err(err))
		writeError(w, http.StatusServiceUnavailable, msgSitemapPending)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Last-Modified", generatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// WebSockets

// handleAnalyzeWS godoc
// @Summary Stream an analysis as reveal events over a WebSocket
// @Tags analyze
// @Param url query string true "Posting URL"
// @Success 101 {object} AnalyzeEvent
// @Router /ws/analyze [get]
func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(logging.Field{Key: "request_id", Value: RequestID(r.Context())})
	target := r.URL.Query().Get("url")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so a close from the browser cancels playback.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if target == "" {
		_ = conn.WriteJSON(AnalyzeEvent{Type: EventError, Error: msgInvalidURL})
		closeNormal(conn)
		return
	}

	report, err := s.analyzer.Analyze(ctx, target)
	if err != nil {
		logger.Error("analyzing posting", logging.Field{Key: "url", Value: target}, logging.Err(err))
		_ = conn.WriteJSON(AnalyzeEvent{Type: EventError, Error: msgFetchFailed})
		closeNormal(conn)
		return
	}

	if err := conn.WriteJSON(AnalyzeEvent{Type: EventStarted, URL: report.FinalURL, Title: report.Page.Title}); err != nil {
		return
	}

	machine := reveal.NewMachine()
	if err := machine.Start(); err != nil {
		logger.Error("starting reveal", logging.Err(err))
		return
	}

	err = reveal.Play(ctx, reveal.Schedule(report.Response()), func(ev reveal.Event) error {
		if err := machine.Apply(ev); err != nil {
			return err
		}
		return conn.WriteJSON(eventFor(ev, machine.State()))
	})
	if err != nil {
		revealed := machine.State().Signals
		machine.Fail()
		logger.Debug("reveal stream ended early",
			logging.Field{Key: "status", Value: string(machine.State().Status)},
			logging.Field{Key: "signals", Value: revealed},
			logging.Err(err))
		return
	}

	logger.Info("streamed analysis",
		logging.Field{Key: "url", Value: target},
		logging.Field{Key: "score", Value: report.Score})
	closeNormal(conn)
}

// eventFor renders ev together with the reveal state it produced.
func eventFor(ev reveal.Event, state reveal.State) AnalyzeEvent {
	if ev.Kind == reveal.EventComplete {
		out := AnalyzeEvent{Type: EventComplete, Score: ev.Score, State: &state}
		if ev.Score != nil {
			out.Label = analyzer.Label(*ev.Score)
		}
		return out
	}
	return AnalyzeEvent{Type: EventSignal, Name: ev.Name, Signal: ev.Signal, State: &state}
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
