// Package secret holds short-lived credential material that must be
// overwritten once it has been used.
package secret

// Secret owns a byte buffer holding plaintext credential material.
// The zero value and a nil *Secret are both empty.
type Secret struct {
	b []byte
}

// New takes ownership of b. The caller must not retain b.
func New(b []byte) *Secret {
	return &Secret{b: b}
}

// FromString copies s into a wipeable buffer. The string itself cannot be
// cleared; only the copy is.
func FromString(s string) *Secret {
	if s == "" {
		return &Secret{}
	}
	return &Secret{b: []byte(s)}
}

// Empty reports whether the secret holds no bytes (never set or already wiped).
func (s *Secret) Empty() bool {
	return s == nil || len(s.b) == 0
}

// Use passes the plaintext to fn and wipes it when fn returns, whether fn
// succeeded, failed, or panicked. The slice handed to fn must not escape.
func (s *Secret) Use(fn func([]byte) error) error {
	if s == nil {
		return fn(nil)
	}
	defer s.Wipe()
	return fn(s.b)
}

// Wipe overwrites the buffer and drops it. Safe to call more than once.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
