package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/aretw0/turing/pkg/tape"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Sessions defines the machine host served over HTTP. session.Manager implements it.
type Sessions interface {
	Create(ctx context.Context, sessionID string, req session.CreateRequest) (domain.Snapshot, error)
	Get(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Step(ctx context.Context, sessionID string) (domain.Rule, domain.Snapshot, error)
	Run(ctx context.Context, sessionID string, limit int) (domain.Snapshot, error)
	Reset(ctx context.Context, sessionID string, input string) (domain.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
	Programs() ([]string, error)
}

var _ Sessions = (*session.Manager)(nil)

// ErrorRecorder receives every error returned to a client, e.g. for metrics.
type ErrorRecorder interface {
	RecordError(err error)
}

// Default tape window returned with a machine. MaxWindow caps either side.
const (
	DefaultWindowLeft  = 10
	DefaultWindowRight = 10
	MaxWindow          = 1000
)

// Server exposes a Sessions host as a JSON API.
type Server struct {
	Sessions Sessions
	Streams  *StreamManager

	metrics  http.Handler
	recorder ErrorRecorder
	logger   *slog.Logger
	upgrader websocket.Upgrader

	stop      chan struct{}
	closeOnce sync.Once
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler mounts h (typically promhttp.Handler) at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithErrorRecorder reports every failed request to rec.
func WithErrorRecorder(rec ErrorRecorder) Option {
	return func(s *Server) {
		s.recorder = rec
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// MachineRequest is the body of POST /machines.
type MachineRequest struct {
	Session string `json:"session"`
	Program string `json:"program,omitempty"`
	Source  string `json:"source,omitempty"`
	Input   string `json:"input,omitempty"`
}

// RunRequest is the optional body of POST /machines/{id}/run.
type RunRequest struct {
	MaxSteps int `json:"max_steps,omitempty"`
}

// ResetRequest is the body of POST /machines/{id}/reset.
type ResetRequest struct {
	Input string `json:"input"`
}

// MachineResponse is a snapshot plus the tape window around the head.
type MachineResponse struct {
	Session string       `json:"session"`
	Window  string       `json:"window"`
	Rule    *domain.Rule `json:"rule,omitempty"`
	domain.Snapshot
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Line  int    `json:"line,omitempty"`
}

// NewServer creates a Server for the given sessions host.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
		upgrader: websocket.Upgrader{
			// The API already answers any origin (see enableCORS).
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for the given sessions host.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/programs", s.ListPrograms)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.ListMachines)
		r.Post("/", s.CreateMachine)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetMachine)
			r.Delete("/", s.DeleteMachine)
			r.Post("/step", s.StepMachine)
			r.Post("/run", s.RunMachine)
			r.Post("/reset", s.ResetMachine)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/ws", s.WatchMachine)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "turing-http",
		"version": strings.TrimSpace(turing.Version),
	})
}

// ListPrograms handles the GET /programs request.
func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
	names, err := s.Sessions.Programs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// ListMachines handles the GET /machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateMachine handles the POST /machines request.
func (s *Server) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var body MachineRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "Invalid request body", err)
		return
	}
	if body.Session == "" {
		s.badRequest(w, "session is required", nil)
		return
	}
	if body.Program == "" && body.Source == "" {
		s.badRequest(w, "program or source is required", nil)
		return
	}
	win, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, "Invalid window", err)
		return
	}
	if body.Source, err = SanitizeSource(body.Source); err != nil {
		s.badRequest(w, "Invalid source", err)
		return
	}
	if body.Input, err = SanitizeInput(body.Input); err != nil {
		s.badRequest(w, "Invalid input", err)
		return
	}

	snap, err := s.Sessions.Create(r.Context(), body.Session, session.CreateRequest{
		Program: body.Program,
		Source:  body.Source,
		Input:   body.Input,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("machine created", "session_id", body.Session, "program", body.Program)
	s.publish(body.Session, snap)
	s.writeJSON(w, http.StatusCreated, s.response(body.Session, snap, nil, win))
}

// GetMachine handles the GET /machines/{id} request.
// Optional left and right query parameters size the tape window.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	win, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, "Invalid window", err)
		return
	}
	snap, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.response(id, snap, nil, win))
}

// DeleteMachine handles the DELETE /machines/{id} request.
// Open event streams of the machine are closed.
func (s *Server) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.CloseSession(id)
	s.logger.Info("machine deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// StepMachine handles the POST /machines/{id}/step request.
func (s *Server) StepMachine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	win, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, "Invalid window", err)
		return
	}
	rule, snap, err := s.Sessions.Step(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, snap)
	s.writeJSON(w, http.StatusOK, s.response(id, snap, &rule, win))
}

// RunMachine handles the POST /machines/{id}/run request.
func (s *Server) RunMachine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.badRequest(w, "Invalid request body", err)
			return
		}
	}
	if body.MaxSteps < 0 {
		s.badRequest(w, "max_steps must not be negative", nil)
		return
	}
	win, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, "Invalid window", err)
		return
	}

	snap, err := s.Sessions.Run(r.Context(), id, body.MaxSteps)
	if snap.State != "" {
		s.publish(id, snap)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.response(id, snap, nil, win))
}

// ResetMachine handles the POST /machines/{id}/reset request.
func (s *Server) ResetMachine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body ResetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.badRequest(w, "Invalid request body", err)
			return
		}
	}

	input, err := SanitizeInput(body.Input)
	if err != nil {
		s.badRequest(w, "Invalid input", err)
		return
	}
	win, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, "Invalid window", err)
		return
	}

	snap, err := s.Sessions.Reset(r.Context(), id, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, snap)
	s.writeJSON(w, http.StatusOK, s.response(id, snap, nil, win))
}

// SubscribeEvents handles the GET /machines/{id}/events request (SSE).
// Every snapshot produced by a mutating request on the machine is pushed as a data event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) publish(id string, snap domain.Snapshot) {
	snap.Source, snap.Sealed = "", nil
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	s.Streams.Broadcast(id, string(data))
}

// tapeWindow is the number of cells returned left of the head and from the head on.
type tapeWindow struct {
	left, right int
}

func (s *Server) response(id string, snap domain.Snapshot, rule *domain.Rule, win tapeWindow) MachineResponse {
	snap.Source = ""
	return MachineResponse{
		Session:  id,
		Window:   window(snap, win),
		Rule:     rule,
		Snapshot: snap,
	}
}

// window cuts the snapshot's tape around the head.
func window(snap domain.Snapshot, win tapeWindow) string {
	t, err := tape.Restore(snap.Tape, snap.Head)
	if err != nil {
		return strings.Repeat(string(tape.Blank), win.left+win.right)
	}
	return t.Window(win.left, win.right)
}

// parseWindow reads the optional left and right query parameters.
func parseWindow(r *http.Request) (tapeWindow, error) {
	left, err := queryInt(r, "left", DefaultWindowLeft)
	if err != nil {
		return tapeWindow{}, err
	}
	right, err := queryInt(r, "right", DefaultWindowRight)
	if err != nil {
		return tapeWindow{}, err
	}
	return tapeWindow{left: left, right: right}, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if n < 0 || n > MaxWindow {
		return 0, fmt.Errorf("%s must be between 0 and %d", key, MaxWindow)
	}
	return n, nil
}

func (s *Server) badRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		s.logger.Warn(msg, "err", err)
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "request"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if s.recorder != nil {
		s.recorder.RecordError(err)
	}

	status, resp := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, resp)
}

// classify maps engine errors to HTTP statuses.
func classify(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var perr *domain.ParseError
	switch {
	case errors.As(err, &perr):
		resp.Kind, resp.Line = "parse", perr.Line
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrSessionNotFound):
		resp.Kind = "session_not_found"
		return http.StatusNotFound, resp
	case errors.Is(err, domain.ErrProgramNotFound):
		resp.Kind = "program_not_found"
		return http.StatusNotFound, resp
	case errors.Is(err, domain.ErrAlreadyHalted):
		resp.Kind = "halted"
		return http.StatusConflict, resp
	case errors.Is(err, domain.ErrNoMatchingRule):
		resp.Kind = "no_matching_rule"
		return http.StatusConflict, resp
	case errors.Is(err, domain.ErrStepLimitExceeded):
		resp.Kind = "step_limit"
		return http.StatusConflict, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		resp.Kind = "canceled"
		return http.StatusServiceUnavailable, resp
	default:
		resp.Kind = "internal"
		return http.StatusInternalServerError, resp
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
