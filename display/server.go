// Package display streams rendered frames to browser viewers over websockets.
//
// Server implements env.Display, so a coordinator's Render call acquires it
// lazily and Close shuts it down; a later Render brings it back up.
package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/turnenv/env"
)

// viewerBuffer is how many frames a viewer may fall behind before frames are dropped.
const viewerBuffer = 4

type viewer struct {
	id   int
	send chan []byte
}

// Server fans PNG frames out to every connected viewer.
type Server struct {
	addr string
	log  logrus.FieldLogger

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	nextID  int
	last    []byte
	width   int
	height  int
	httpSrv *http.Server
	ln      net.Listener
}

var _ env.Display = (*Server)(nil)

// New returns a server that will listen on addr once opened. Use ":0" for an
// ephemeral port.
func New(addr string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		addr:    addr,
		log:     log.WithField("component", "display"),
		viewers: map[*viewer]struct{}{},
	}
}

// Opener adapts the server to env.DisplayOpener.
func (s *Server) Opener() env.DisplayOpener {
	return func() (env.Display, error) { return s, nil }
}

// Handler serves /frames (websocket) and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.serveFrames)
	mux.HandleFunc("/healthz", s.serveHealth)
	return mux
}

// Open starts listening. Frames are sized width x height.
func (s *Server) Open(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv != nil {
		return fmt.Errorf("display already open on %s", s.ln.Addr())
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.width, s.height = width, height
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	srv := s.httpSrv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("display server stopped")
		}
	}()
	s.log.WithFields(logrus.Fields{"addr": ln.Addr().String(), "width": width, "height": height}).Info("display open")
	return nil
}

// Addr is the bound listen address, or "" when closed.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Present encodes img and queues it for every viewer. Viewers that are behind
// miss the frame; Present never waits on the network.
func (s *Server) Present(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	s.broadcast(buf.Bytes())
	return nil
}

func (s *Server) broadcast(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = frame
	for v := range s.viewers {
		select {
		case v.send <- frame:
		default:
			s.log.WithField("viewer", v.id).Debug("viewer behind, frame dropped")
		}
	}
}

// Close disconnects all viewers and stops the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.httpSrv
	s.httpSrv, s.ln = nil, nil
	for v := range s.viewers {
		close(v.send)
		delete(s.viewers, v)
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown display: %w", err)
	}
	s.log.Info("display closed")
	return nil
}

// Viewers is the number of connected viewers.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

func (s *Server) register() *viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v := &viewer{id: s.nextID, send: make(chan []byte, viewerBuffer)}
	if s.last != nil {
		v.send <- s.last
	}
	s.viewers[v] = struct{}{}
	return v
}

func (s *Server) unregister(v *viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.viewers[v]; ok {
		delete(s.viewers, v)
		close(v.send)
	}
}

func (s *Server) serveFrames(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	v := s.register()
	log := s.log.WithField("viewer", v.id)
	log.Info("viewer connected")
	defer func() {
		s.unregister(v)
		log.Info("viewer disconnected")
	}()

	// viewers never send; CloseRead handles control frames and cancels on hangup
	ctx := c.CloseRead(r.Context())
	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-v.send:
			if !ok {
				_ = c.Close(websocket.StatusGoingAway, "display closed")
				return
			}
			if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
				return
			}
		case <-ping.C:
			if err := c.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			_ = c.Close(websocket.StatusNormalClosure, "bye")
			return
		}
	}
}

type health struct {
	Status  string `json:"status"`
	Viewers int    `json:"viewers"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	h := health{Status: "ok", Viewers: len(s.viewers), Width: s.width, Height: s.height}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h)
}
