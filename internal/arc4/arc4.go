// File: internal/arc4/arc4.go
// Author: momentics <momentics@gmail.com>
//
// Entropy-seeded ARC4 keystream used for non-cryptographic identifiers
// such as message-id and temporary-file suffixes.

package arc4

import (
	"fmt"
	"io"
)

// SeedSize is the number of entropy bytes mixed into the key schedule.
const SeedSize = 128

// discard is the number of initial keystream bytes thrown away.
const discard = 256

// Stream is an ARC4 byte generator. It is not safe for concurrent use.
type Stream struct {
	i, j uint8
	s    [256]uint8
}

// New keys a stream with seed. Key bytes are taken cyclically from the
// first SeedSize bytes of seed; an empty seed is rejected.
func New(seed []byte) (*Stream, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("arc4: empty seed")
	}
	if len(seed) > SeedSize {
		seed = seed[:SeedSize]
	}
	st := &Stream{}
	for i := range st.s {
		st.s[i] = uint8(i)
	}
	var j uint8
	for i := 0; i < 256; i++ {
		si := st.s[i]
		j += si + seed[i%len(seed)]
		st.s[i] = st.s[j]
		st.s[j] = si
	}
	for i := 0; i < discard; i++ {
		st.Byte()
	}
	return st, nil
}

// NewFromEntropy reads SeedSize bytes from r and keys a stream with them.
// Pass crypto/rand.Reader in production.
func NewFromEntropy(r io.Reader) (*Stream, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("arc4: cannot read random number source: %w", err)
	}
	return New(seed)
}

// Byte returns the next keystream byte.
func (st *Stream) Byte() byte {
	st.i++
	si := st.s[st.i]
	st.j += si
	sj := st.s[st.j]
	st.s[st.i] = sj
	st.s[st.j] = si
	return st.s[si+sj]
}

// Read fills p with keystream. It never fails.
func (st *Stream) Read(p []byte) (int, error) {
	for k := range p {
		p[k] = st.Byte()
	}
	return len(p), nil
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Token returns n alphanumeric characters drawn from the stream, suitable
// for message-id and temporary-file suffixes.
func (st *Stream) Token(n int) string {
	b := make([]byte, n)
	for k := range b {
		b[k] = tokenAlphabet[int(st.Byte())%len(tokenAlphabet)]
	}
	return string(b)
}
