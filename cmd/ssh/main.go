package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/draw"
	ilogging "github.com/tomz197/driftfield/internal/logging"
	"github.com/tomz197/driftfield/internal/loop"
	"github.com/tomz197/driftfield/internal/loop/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// host serves one private game per SSH session.
type host struct {
	cfg      *config.Config
	manifest config.Manifest
	sessions *loop.Registry
	log      *zap.Logger
}

func run() error {
	cfgPath := config.GetEnv("DRIFTFIELD_CONFIG", config.DefaultPath)
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)

	log, cleanup, err := ilogging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer cleanup()

	manifest, err := config.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	workingDir, err := os.Getwd()
	if err != nil {
		log.Warn("failed to get working directory", zap.Error(err))
	}
	log.Info("ssh config",
		zap.String("host", cfg.SSH.Host),
		zap.String("port", cfg.SSH.Port),
		zap.String("host_key", cfg.SSH.HostKeyPath),
		zap.String("working_dir", workingDir),
	)

	h := &host{cfg: cfg, manifest: manifest, sessions: loop.NewRegistry(), log: log}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if w, err := config.Watch(cfgPath); err != nil {
		log.Warn("config hot reload disabled", zap.String("path", cfgPath), zap.Error(err))
	} else {
		defer w.Close()
		go loop.ForwardReloads(ctx, w, h.sessions, log)
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			h.gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(zap.NewStdLog(log.Named("ssh"))),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create ssh server: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting ssh server", zap.String("addr", s.Addr))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("ssh server: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// Notify players and wait for them to disconnect before closing connections.
	h.sessions.Shutdown(loop.ShutdownGrace, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ssh shutdown: %w", err)
	}
	return nil
}

// gameMiddleware handles SSH sessions and runs a game for each.
func (h *host) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		log := h.log.With(zap.String("user", sess.User()))
		log.Info("new game session",
			zap.String("terminal", pty.Term),
			zap.Int("width", pty.Window.Width),
			zap.Int("height", pty.Window.Height),
		)

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		game, err := loop.NewSession(loop.SessionOptions{
			Config:   h.cfg,
			Manifest: h.manifest,
			Log:      log,
			Client: client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Username:     sess.User(),
			},
		})
		if err != nil {
			log.Error("failed to start game", zap.Error(err))
			fmt.Fprintln(sess, "Error: could not start a game, please try again later.")
			return
		}

		h.sessions.Add(game)
		defer h.sessions.Remove(game)

		if err := game.Run(sess.Context(), bufio.NewReader(sess), sess); err != nil {
			log.Warn("game error", zap.Error(err))
		}

		log.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
