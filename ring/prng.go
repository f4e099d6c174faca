package ring

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"
)

// PRNG is a deterministic, seedable byte stream built around blake2b-512,
// adapted from the teacher's collective CRS generator (dbfv/collective_CRS.go):
// each Clock replaces the running 64-byte state with its blake2b-512 digest
// and emits the second half of that digest (32 bytes), so the stream is
// fully reproducible from the initial seed. It backs both
// the uniform/Gaussian/ternary samplers below and the seeded-query /
// lane-CRS expansion in package rlwe, so a client and server that agree on
// a seed agree on every "random" polynomial derived from it.
type PRNG struct {
	clock [64]byte
	seed  []byte
	hash  []byte
}

// NewPRNG seeds a PRNG from crypto/rand.
func NewPRNG() (*PRNG, error) {
	seed := make([]byte, 64)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, err
	}
	return NewKeyedPRNG(seed), nil
}

// NewKeyedPRNG seeds a PRNG deterministically from the given key, so two
// parties (or a client and server) that share a seed derive identical
// pseudorandom streams.
func NewKeyedPRNG(key []byte) *PRNG {
	p := &PRNG{}
	p.Seed(key)
	return p
}

// Seed (re)initializes the PRNG state from key.
func (p *PRNG) Seed(key []byte) {
	sum := blake2b.Sum512(key)
	p.hash = sum[:]
	p.seed = append([]byte(nil), key...)
	copy(p.clock[:], p.hash)
}

// Clock advances the stream and returns the next 32 pseudorandom bytes.
func (p *PRNG) Clock() []byte {
	sum := blake2b.Sum512(p.hash)
	p.hash = sum[:]
	out := make([]byte, 32)
	copy(out, p.hash[32:])
	return out
}

// Read fills buf with pseudorandom bytes drawn from successive Clock calls.
func (p *PRNG) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		chunk := p.Clock()
		n += copy(buf[n:], chunk)
	}
	return n, nil
}

// Uint64 returns the next 8 pseudorandom bytes as a big-endian uint64.
func (p *PRNG) Uint64() uint64 {
	var buf [8]byte
	p.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}
