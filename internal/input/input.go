// Package input turns a raw terminal byte stream into flight controls.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so a held key is a key seen recently.
const keyHoldDuration = 60 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit   bool
	Yaw    float64 // -1 left, +1 right
	Pitch  float64 // -1 nose down, +1 nose up
	Roll   float64 // -1 counter-clockwise, +1 clockwise
	Boost  bool
	Fire   int // trigger presses since the previous read
	Enter  bool
	Escape bool

	Pressed []byte
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit      time.Time
	yawLeft   time.Time
	yawRight  time.Time
	pitchUp   time.Time
	pitchDown time.Time
	rollLeft  time.Time
	rollRight time.Time
	boost     time.Time
	enter     time.Time
	escape    time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended (EOF or disconnect).
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	in := s.apply(buf, time.Now())
	if s.closed {
		in.Quit = true
	}
	return in
}

// apply folds buf into the key state and builds the input seen at now.
func (s *Stream) apply(buf []byte, now time.Time) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.pitchDown = now
				i += 2
				continue
			case 'B':
				s.state.pitchUp = now
				i += 2
				continue
			case 'C':
				s.state.yawRight = now
				i += 2
				continue
			case 'D':
				s.state.yawLeft = now
				i += 2
				continue
			}
		}

		if b == ' ' {
			in.Fire++
			continue
		}
		applyByteToState(&s.state, b, now)
	}

	held := func(t time.Time) bool { return now.Sub(t) < keyHoldDuration }

	in.Quit = held(s.state.quit)
	in.Boost = held(s.state.boost)
	in.Enter = held(s.state.enter)
	in.Escape = held(s.state.escape)
	in.Yaw = axis(held(s.state.yawLeft), held(s.state.yawRight))
	in.Pitch = axis(held(s.state.pitchDown), held(s.state.pitchUp))
	in.Roll = axis(held(s.state.rollLeft), held(s.state.rollRight))
	return in
}

func axis(neg, pos bool) float64 {
	switch {
	case neg && !pos:
		return -1
	case pos && !neg:
		return 1
	}
	return 0
}

// applyByteToState updates the key state timestamps based on the pressed byte.
// Upper-case flight keys mean shift is held, which boosts.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'A', 'D', 'W', 'S', 'Q', 'E':
		state.boost = now
		b += 'a' - 'A'
	}

	switch b {
	case 'x', '\x03':
		state.quit = now
	case 'a', 'h':
		state.yawLeft = now
	case 'd', 'l':
		state.yawRight = now
	case 'w', 'k':
		state.pitchDown = now
	case 's', 'j':
		state.pitchUp = now
	case 'q':
		state.rollLeft = now
	case 'e':
		state.rollRight = now
	case 'b', '\t':
		state.boost = now
	case '\n', '\r':
		state.enter = now
	case '\x1b':
		state.escape = now
	}
}
