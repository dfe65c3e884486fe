package random

import (
	"crypto/rand"
	"math/big"
)

// Random picks numbers for automated players and can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a random int in [0, n), or 0 when n is not positive
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Pick returns a random element of values using rnd. values must not be empty.
func Pick[T any](rnd Random, values []T) T {
	return values[rnd.Intn(len(values))]
}
