// Package web provides the HTTP front end for the plotview host: the
// rendered plot as a page, SVG and JSON, plus input endpoints that forward
// presses, wheel turns and cursor moves to the host loop.
package web

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/signal"
	"github.com/sweeney/plotview/internal/status"
)

// inputTimeout bounds how long a handler waits for the host loop.
const inputTimeout = 5 * time.Second

// Dispatcher hands an input to whoever owns the view.
type Dispatcher interface {
	Dispatch(ctx context.Context, in plot.Input) (Result, error)
}

// Server serves the plot over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	dispatcher Dispatcher
}

// New creates a Server that reads state from the given tracker and sends
// inputs to d. A nil d makes the input endpoints answer 503.
func New(addr string, tracker *status.Tracker, d Dispatcher) *Server {
	s := &Server{tracker: tracker, dispatcher: d}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/frame.svg", s.handleSVG)
	mux.HandleFunc("/press", s.handlePress)
	mux.HandleFunc("/wheel", s.handleWheel)
	mux.HandleFunc("/poi", s.handlePOI)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	WriteSVG(w, snap.View.Frame)
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseInt(q.Get("x"), 10, 64)
	y, errY := strconv.ParseInt(q.Get("y"), 10, 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be integers")
		return
	}
	s.dispatch(w, r, plot.Input{Kind: plot.InputPress, X: x, Y: y})
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	delta, err := strconv.Atoi(r.URL.Query().Get("delta"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "delta must be an integer")
		return
	}
	s.dispatch(w, r, plot.Input{Kind: plot.InputWheel, Delta: delta})
}

func (s *Server) handlePOI(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseUint(r.URL.Query().Get("t"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "t must be a non-negative integer")
		return
	}
	s.dispatch(w, r, plot.Input{Kind: plot.InputPOI, Time: signal.Time(t)})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, in plot.Input) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if s.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "view is read-only")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), inputTimeout)
	defer cancel()
	res, err := s.dispatcher.Dispatch(ctx, in)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeResult(w, res)
}
