package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Fingerprint accumulates typed values into a hash. Floats are hashed by their
// IEEE-754 bits so that -0, NaN payloads and the max-float sentinel stay distinct.
type Fingerprint struct {
	h   hash.Hash
	buf [8]byte
}

// NewFingerprint starts an empty fingerprint
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: sha256.New()}
}

// Tag mixes a section label so adjacent slices cannot alias each other
func (f *Fingerprint) Tag(label string) *Fingerprint {
	f.Int(len(label))
	f.h.Write([]byte(label))
	return f
}

// Int mixes an integer
func (f *Fingerprint) Int(v int) *Fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], uint64(int64(v)))
	f.h.Write(f.buf[:])
	return f
}

// Float mixes a float by bit pattern
func (f *Fingerprint) Float(v float64) *Fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], math.Float64bits(v))
	f.h.Write(f.buf[:])
	return f
}

// Floats mixes a length-prefixed float slice
func (f *Fingerprint) Floats(vs []float64) *Fingerprint {
	f.Int(len(vs))
	for _, v := range vs {
		f.Float(v)
	}
	return f
}

// Ints mixes a length-prefixed int slice
func (f *Fingerprint) Ints(vs []int) *Fingerprint {
	f.Int(len(vs))
	for _, v := range vs {
		f.Int(v)
	}
	return f
}

// Sum finalizes the fingerprint
func (f *Fingerprint) Sum() Hash {
	return Hash(hex.EncodeToString(f.h.Sum(nil)))
}
