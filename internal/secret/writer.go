package secret

import "io"

// Writer collects a child's output as secret material. Arrays outgrown while
// writing are zeroed before they are dropped.
type Writer struct {
	b []byte
}

func (w *Writer) grow(n int) {
	if cap(w.b)-len(w.b) >= n {
		return
	}
	next := make([]byte, len(w.b), 2*cap(w.b)+n)
	copy(next, w.b)
	Zero(w.b[:cap(w.b)])
	w.b = next
}

func (w *Writer) Write(p []byte) (int, error) {
	w.grow(len(p))
	w.b = append(w.b, p...)
	return len(p), nil
}

// ReadFrom reads r directly into the buffer. io.Copy prefers it, so os/exec
// never stages the output in its own copy buffer.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		w.grow(512)
		n, err := r.Read(w.b[len(w.b):cap(w.b)])
		w.b = w.b[:len(w.b)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Secret hands the collected bytes to a Secret and empties w.
func (w *Writer) Secret() *Secret {
	s := New(w.b)
	w.b = nil
	return s
}

// Wipe discards anything collected so far.
func (w *Writer) Wipe() {
	Zero(w.b[:cap(w.b)])
	w.b = nil
}
