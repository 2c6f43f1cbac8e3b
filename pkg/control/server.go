package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/files"
	"github.com/small-frappuccino/richpresence/pkg/log"
)

const (
	defaultMaxBodyBytes = 64 * 1024
)

// Broadcaster is the goroutine-safe surface of discordrpc.Broadcaster the server uses.
type Broadcaster interface {
	State() discordrpc.State
	Pushes() int64
	Current() discordrpc.Params
	Snapshot() files.Presence
	Publish(files.Presence)
	Stop()
}

// Server exposes a local HTTP API for a headless broadcast.
type Server struct {
	addr        string
	broadcaster Broadcaster
	now         func() time.Time
	router      *mux.Router
	httpServer  *http.Server
	listener    net.Listener
}

// NewServer returns nil if addr is empty.
func NewServer(addr string, broadcaster Broadcaster) *Server {
	addr = strings.TrimSpace(addr)
	if addr == "" || broadcaster == nil {
		return nil
	}

	s := &Server{
		addr:        addr,
		broadcaster: broadcaster,
		now:         time.Now,
		router:      mux.NewRouter(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/presence", s.handleGetPresence).Methods(http.MethodGet)
	api.HandleFunc("/presence", s.handlePutPresence).Methods(http.MethodPut)
	api.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start opens the control server listening socket.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("bind control server: %w", err)
	}
	s.listener = ln

	log.ApplicationLogger().Info("Control server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ApplicationLogger().Error("Control server stopped unexpectedly", "err", err)
		}
	}()

	return nil
}

// Stop shuts down the control server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown control server: %w", err)
	}

	log.ApplicationLogger().Info("Control server stopped", "addr", s.addr)
	return nil
}

// StatusResponse is the body of GET /v1/status.
type StatusResponse struct {
	State           discordrpc.State `json:"state"`
	Profile         string           `json:"profile,omitempty"`
	Pushes          int64            `json:"pushes"`
	IntervalSeconds int              `json:"interval_seconds,omitempty"`
	Presence        files.Presence   `json:"presence"`
}

func (s *Server) status() StatusResponse {
	cur := s.broadcaster.Current()
	return StatusResponse{
		State:           s.broadcaster.State(),
		Profile:         cur.Label,
		Pushes:          s.broadcaster.Pushes(),
		IntervalSeconds: int(cur.Interval / time.Second),
		Presence:        s.broadcaster.Snapshot(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleGetPresence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.broadcaster.Snapshot())
}

func (s *Server) handlePutPresence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes)
	defer r.Body.Close()

	p, err := s.decodePresence(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.broadcaster.Publish(p)
	log.ApplicationLogger().Info("Presence replaced via control API", "profile", s.broadcaster.Current().Label)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"presence": p,
	})
}

func (s *Server) decodePresence(r *http.Request) (files.Presence, error) {
	state := s.broadcaster.State()
	if state != discordrpc.StateConnecting && state != discordrpc.StateBroadcasting {
		return files.Presence{}, &httpError{code: http.StatusConflict, err: fmt.Errorf("broadcaster is %s", state)}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var p files.Presence
	if err := dec.Decode(&p); err != nil {
		return files.Presence{}, badRequest(fmt.Errorf("invalid payload: %w", err))
	}
	p = p.Normalize()
	if !p.HasText() {
		return files.Presence{}, badRequest(fmt.Errorf("state or details is required"))
	}
	if p.Start == 0 {
		p.Start = s.now().Unix()
	}
	return p, nil
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.broadcaster.Stop()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "stopping",
		"state":  s.broadcaster.State(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ApplicationLogger().Error("Failed to encode control response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		status = httpErr.code
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(err error) error {
	return &httpError{
		code: http.StatusBadRequest,
		err:  err,
	}
}

type httpError struct {
	code int
	err  error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }
