package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/logging"
	"github.com/tomz197/driftfield/internal/loop"
)

// localLogFile receives log output when the config points it at the terminal,
// which the game itself draws on.
const localLogFile = "Logs/driftfield.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.GetEnv("DRIFTFIELD_CONFIG", config.DefaultPath)
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = localLogFile
	}

	log, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer cleanup()

	manifest, err := config.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	sess, err := loop.NewSession(loop.SessionOptions{
		Config:   cfg,
		Manifest: manifest,
		Log:      log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if w, err := config.Watch(cfgPath); err != nil {
		log.Warn("config hot reload disabled", zap.String("path", cfgPath), zap.Error(err))
	} else {
		defer w.Close()
		go loop.ForwardReloads(ctx, w, sess, log)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	log.Info("local game started", zap.String("config", cfgPath))
	if err := sess.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}
