package srcml

import (
	"errors"
	"io"
)

// DefaultBufferSize is the capacity of the scan window when none is
// given: sixteen blocks of sixteen pages.
const DefaultBufferSize = 16 * 16 * 4096

// minBufferSize keeps the window large enough for the classifier
// lookahead even when a caller asks for a pathological capacity.
const minBufferSize = 16

// Window is a refillable view over a fixed capacity byte buffer. The
// bytes between the cursor and the end of the last read are the
// unconsumed input; Refill shifts them to the front of the buffer and
// reads new data into the tail, so no visible byte is ever read twice
// from the source.
type Window struct {
	rd    io.Reader
	buf   []byte
	cur   int
	end   int
	total int64
}

func NewWindow(r io.Reader, size int) *Window {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if size < minBufferSize {
		size = minBufferSize
	}
	return &Window{
		rd:  r,
		buf: make([]byte, size),
	}
}

// Bytes returns the unconsumed view of the input. The slice is only
// valid until the next call to Refill.
func (w *Window) Bytes() []byte {
	return w.buf[w.cur:w.end]
}

// Len returns the number of unconsumed bytes in the window.
func (w *Window) Len() int {
	return w.end - w.cur
}

// Cap returns the fixed capacity of the window.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Advance consumes n bytes of the window.
func (w *Window) Advance(n int) {
	if n > w.Len() {
		n = w.Len()
	}
	w.cur += n
}

// Total returns the cumulative number of bytes read from the source.
func (w *Window) Total() int64 {
	return w.total
}

// Offset returns the position of the cursor in the input stream.
func (w *Window) Offset() int64 {
	return w.total - int64(w.Len())
}

// Refill shifts the unconsumed bytes to the front of the buffer and
// reads into the remaining room until the window is full or the input
// ends. It returns the number of bytes read; zero means end of input,
// in which case the window is left empty.
func (w *Window) Refill() (int, error) {
	if w.cur > 0 {
		copy(w.buf, w.buf[w.cur:w.end])
		w.end -= w.cur
		w.cur = 0
	}
	var read int
	for w.end < len(w.buf) {
		n, err := w.rd.Read(w.buf[w.end:])
		w.end += n
		read += n
		if err != nil {
			w.total += int64(read)
			if errors.Is(err, io.EOF) {
				if read == 0 {
					w.cur, w.end = 0, 0
				}
				return read, nil
			}
			return read, err
		}
	}
	w.total += int64(read)
	return read, nil
}
