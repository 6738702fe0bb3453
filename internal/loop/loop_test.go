package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/loop/client"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newSession(t *testing.T) *Session {
	t.Helper()
	m, err := config.LoadManifest("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(SessionOptions{
		Manifest: m,
		Client: client.ClientOptions{
			TermSizeFunc: func() (int, int, error) { return 80, 24, nil },
		},
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionEndsWhenInputEnds(t *testing.T) {
	s := newSession(t)
	var out syncBuffer

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), bufio.NewReader(strings.NewReader("")), &out) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("session kept running after EOF")
	}
}

func TestCancelledSessionShowsShutdown(t *testing.T) {
	s := newSession(t)
	pr, pw := io.Pipe()
	defer pw.Close()
	var out syncBuffer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, bufio.NewReader(pr), &out) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), "SERVER SHUTTING DOWN") {
		if time.Now().After(deadline) {
			t.Fatalf("shutdown screen never shown")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := pw.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("session did not end after quit")
	}
}

func TestRegistryShutdownReturnsForFinishedSessions(t *testing.T) {
	r := NewRegistry()
	s := newSession(t)
	if err := s.Run(context.Background(), bufio.NewReader(strings.NewReader("")), io.Discard); err != nil {
		t.Fatal(err)
	}
	r.Add(s)
	if r.Len() != 1 {
		t.Fatalf("sessions: got=%d want=1", r.Len())
	}

	start := time.Now()
	r.Shutdown(5*time.Second, zap.NewNop())
	if time.Since(start) > time.Second {
		t.Fatalf("shutdown waited for a detached session")
	}

	r.Remove(s)
	if r.Len() != 0 {
		t.Fatalf("sessions after remove: %d", r.Len())
	}
}

func TestRegistryRemembersReloadedTuning(t *testing.T) {
	r := NewRegistry()
	tuning := config.DefaultTuning()
	tuning.Shot.Speed = 10
	r.ApplyTuning(tuning)
	if r.tuning == nil || r.tuning.Shot.Speed != 10 {
		t.Fatalf("tuning not kept for new sessions")
	}
}

type recordingApplier struct {
	ch chan config.Tuning
}

func (a recordingApplier) ApplyTuning(t config.Tuning) { a.ch <- t }

func TestForwardReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftfield.toml")
	if err := os.WriteFile(path, []byte("[tuning.shot]\nspeed = 100.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := config.Watch(path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	target := recordingApplier{ch: make(chan config.Tuning, 4)}
	go ForwardReloads(ctx, w, target, zap.NewNop())

	if err := os.WriteFile(path, []byte("[tuning.shot]\nspeed = 10.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-target.ch:
		if got.Shot.Speed != 10 {
			t.Fatalf("shot speed: got=%f want=10", got.Shot.Speed)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("reload never forwarded")
	}
}
