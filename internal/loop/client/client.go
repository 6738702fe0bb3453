// Package client renders one player's view of a server and forwards their input.
package client

import (
	"bufio"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/draw"
	"github.com/tomz197/driftfield/internal/input"
	"github.com/tomz197/driftfield/internal/loop/config"
	"github.com/tomz197/driftfield/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	log          *zap.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Log          *zap.Logger
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	state := NewClientState()
	state.termSizeFunc = termSizeFunc

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		server:       gs,
		state:        state,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		log:          log,
	}
}

// Run starts the client loop. Blocks until the player quits, the input
// stream ends or the server shuts down. The server is detached on return.
func (c *Client) Run() error {
	defer c.server.Detach()

	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()
	last := time.Now()

	for c.state.Running {
		now := time.Now()
		c.state.delta = now.Sub(last)
		last = now

		if err := c.frame(); err != nil {
			return err
		}
		if c.state.Running {
			<-ticker.C
		}
	}

	c.log.Debug("client finished",
		zap.String("user", c.username),
		zap.Stringer("state", c.state.GameState),
		zap.Int64("bytes_sent", c.chunkWriter.Written()),
	)
	draw.ClearScreen(c.writer)
	return nil
}

// frame runs one client frame: input, server events, state, drawing.
func (c *Client) frame() error {
	c.processInput()
	c.processServerEvents()
	c.updateScreen()

	switch c.state.GameState {
	case GameStateStart, GameStateGameOver:
		c.updateMenuState()
	case GameStateShutdown:
		c.updateShutdownState()
	}

	return c.drawFrame()
}

// idle reports how long no key has been pressed.
func (c *Client) idle() time.Duration {
	return time.Since(c.lastInput)
}

// processInput reads the keyboard and forwards flight controls while playing.
func (c *Client) processInput() {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	const (
		warnAfter       = config.InactivityWarnUser * time.Second
		disconnectAfter = config.InactivityDisconnectUser * time.Second
	)
	switch {
	case len(in.Pressed) > 0:
		c.lastInput = time.Now()
		c.state.isInactive = false
	case c.idle() > disconnectAfter:
		c.log.Info("disconnecting inactive player", zap.String("user", c.username))
		c.state.Running = false
	case c.idle() > warnAfter:
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
	}
	if c.state.GameState == GameStatePlaying {
		c.server.SendInput(in)
	}
}

// processServerEvents applies every queued server event.
func (c *Client) processServerEvents() {
	for {
		select {
		case ev, ok := <-c.server.Events():
			if !ok {
				c.state.Running = false
				return
			}
			c.handleEvent(ev)
		default:
			return
		}
	}
}

func (c *Client) handleEvent(ev server.Event) {
	switch ev.Type {
	case server.EventGameOver:
		c.state.GameState = GameStateGameOver
		c.state.Reason = ev.Reason
	case server.EventServerShutdown:
		c.state.GameState = GameStateShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// updateScreen follows terminal resizes. When the render area moves or
// changes size the terminal is cleared, so nothing from the old layout
// (borders, offset content) survives.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	width, height, offsetCol, offsetRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	moved := offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow()
	resized := width != c.canvas.TerminalWidth() || height != c.canvas.TerminalHeight()
	if moved || resized {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(width, height)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// startGame asks the server for a fresh flight.
func (c *Client) startGame() {
	c.server.Restart()
	c.state.Reason = ""
	c.state.GameState = GameStatePlaying
}

// updateMenuState starts a flight from the title or game over screen.
func (c *Client) updateMenuState() {
	if c.state.Input.Enter {
		c.startGame()
	}
}

// updateShutdownState counts down the shutdown notice, then disconnects.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
