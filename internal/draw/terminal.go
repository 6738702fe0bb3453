package draw

import (
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/term"
)

// ChunkWriter batches one frame of terminal output and sends it in chunks no
// larger than a network packet, so a frame never stalls an SSH channel
// behind one huge write. The first write error sticks and is returned by
// every later Flush.
type ChunkWriter struct {
	dst     io.Writer
	frame   []byte
	offCol  int
	offRow  int
	err     error
	written int64
}

// NewChunkWriter creates a ChunkWriter that writes to w. offsetCol and offsetRow
// are added to every cursor position (for canvas centering).
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		dst:    w,
		frame:  make([]byte, 0, 16<<10),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the cursor offset (e.g. after terminal resize).
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// MoveCursor queues a cursor move to the 1-based canvas position (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.frame = append(cw.frame, "\033["...)
	cw.frame = strconv.AppendInt(cw.frame, int64(row+cw.offRow), 10)
	cw.frame = append(cw.frame, ';')
	cw.frame = strconv.AppendInt(cw.frame, int64(col+cw.offCol), 10)
	cw.frame = append(cw.frame, 'H')
}

// Write queues raw bytes. It lets Canvas.Render target the frame.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.frame = append(cw.frame, p...)
	return len(p), nil
}

func (cw *ChunkWriter) WriteString(s string) {
	cw.frame = append(cw.frame, s...)
}

// WriteAt queues s at the 1-based canvas position (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame = append(cw.frame, s...)
}

func (cw *ChunkWriter) WriteRune(r rune) {
	cw.frame = utf8.AppendRune(cw.frame, r)
}

// Pending returns the number of queued bytes.
func (cw *ChunkWriter) Pending() int {
	return len(cw.frame)
}

// Written returns the number of bytes sent so far.
func (cw *ChunkWriter) Written() int64 {
	return cw.written
}

// Flush sends the queued frame and empties the queue.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame
	cw.frame = cw.frame[:0]
	for len(data) > 0 && cw.err == nil {
		n := min(len(data), maxChunkSize)
		written, err := cw.dst.Write(data[:n])
		cw.written += int64(written)
		cw.err = err
		data = data[n:]
	}
	return cw.err
}

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
)

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

func HideCursor(w io.Writer) {
	io.WriteString(w, seqHideCursor)
}

func ShowCursor(w io.Writer) {
	io.WriteString(w, seqShowCursor)
}

// FitTerminal clamps terminal dimensions to a maximum render area and returns
// the centering offset of that area.
func FitTerminal(termWidth, termHeight, maxWidth, maxHeight int) (width, height, offsetCol, offsetRow int) {
	width = min(termWidth, maxWidth)
	height = min(termHeight, maxHeight)
	offsetCol = (termWidth - width) / 2
	offsetRow = (termHeight - height) / 2
	return
}
