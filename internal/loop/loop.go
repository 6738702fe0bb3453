// Package loop runs game sessions: one server and one terminal client each,
// plus the bookkeeping a host process needs to reload and stop them.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/loop/client"
	"github.com/tomz197/driftfield/internal/loop/server"
)

// ShutdownGrace is how long a stopping host waits for players to leave.
const ShutdownGrace = 15 * time.Second

// SessionOptions configures a Session.
type SessionOptions struct {
	Config   *config.Config
	Manifest config.Manifest
	Log      *zap.Logger
	Client   client.ClientOptions
}

// Session is one player's game: a private server and the client drawing it.
type Session struct {
	server *server.Server
	client client.ClientOptions
	log    *zap.Logger
}

// NewSession builds the session's server. Nothing runs until Run.
func NewSession(opts SessionOptions) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}

	srv, err := server.New(server.Options{
		Tuning:   cfg.Tuning,
		Manifest: opts.Manifest,
		TickRate: cfg.Server.TickRate,
		Seed:     cfg.Server.Seed,
		Log:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	clientOpts := opts.Client
	if clientOpts.Log == nil {
		clientOpts.Log = log
	}
	return &Session{server: srv, client: clientOpts, log: log}, nil
}

// Server returns the session's game server.
func (s *Session) Server() *server.Server {
	return s.server
}

// ApplyTuning forwards reloaded gameplay constants to the server.
func (s *Session) ApplyTuning(t config.Tuning) {
	s.server.ApplyTuning(t)
}

// Shutdown tells the player the server is going away and waits up to timeout
// for the client to leave.
func (s *Session) Shutdown(timeout time.Duration) {
	s.server.Shutdown(timeout)
}

// Run plays the session on r and w until the client exits. Cancelling ctx
// shows the shutdown screen rather than cutting the player off.
func (s *Session) Run(ctx context.Context, r *bufio.Reader, w io.Writer) error {
	// The server outlives ctx until the client has seen the shutdown notice.
	srvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.server.Run(srvCtx)
	}()

	clientDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.server.Shutdown(ShutdownGrace)
		case <-clientDone:
		}
	}()

	c := client.NewClient(s.server, r, w, s.client)
	err := c.Run()
	close(clientDone)

	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("client %s: %w", s.client.Username, err)
	}
	return nil
}
