// Package labelnoise corrupts a fraction of the labels in
// a classification dataset.
//
// Corruption is used to study how well a classifier
// generalizes when part of its supervision is wrong.
package labelnoise

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/unixpickle/essentials"
)

// ErrInvalidConfig is returned (wrapped with context) when
// the noise parameters cannot be satisfied.
var ErrInvalidConfig = errors.New("invalid configuration")

// A Result is the outcome of Corrupt.
type Result struct {
	// Labels is the full label list after corruption.
	Labels []int

	// Noisy lists the corrupted indices, in the order in
	// which they were selected.
	// No index appears twice.
	Noisy []int
}

// Overrides returns a map from each corrupted index to its
// new label.
func (r *Result) Overrides() map[int]int {
	res := make(map[int]int, len(r.Noisy))
	for _, idx := range r.Noisy {
		res[idx] = r.Labels[idx]
	}
	return res
}

// NumNoisy returns the number of labels corrupted for a
// dataset of size n, which is floor(p*n).
func NumNoisy(n int, p float64) int {
	return int(math.Floor(p * float64(n)))
}

// Corrupt selects NumNoisy(len(labels), p) distinct indices
// uniformly at random and gives each of them a uniformly
// random label which differs from its original label.
//
// The labels argument is not modified.
// If gen is nil, a time-seeded generator is used.
func Corrupt(labels []int, numClasses int, p float64, gen *rand.Rand) (*Result, error) {
	if err := Validate(numClasses, p); err != nil {
		return nil, essentials.AddCtx("corrupt labels", err)
	}
	for i, l := range labels {
		if l < 0 || l >= numClasses {
			return nil, essentials.AddCtx("corrupt labels",
				fmt.Errorf("%w: label %d at index %d is outside [0, %d)",
					ErrInvalidConfig, l, i, numClasses))
		}
	}
	if gen == nil {
		gen = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	res := &Result{
		Labels: append([]int{}, labels...),
		Noisy:  gen.Perm(len(labels))[:NumNoisy(len(labels), p)],
	}
	for _, idx := range res.Noisy {
		res.Labels[idx] = DifferentLabel(res.Labels[idx], numClasses, gen)
	}
	return res, nil
}

// Validate checks that labels can be corrupted with the
// given class count and noise fraction.
func Validate(numClasses int, p float64) error {
	if numClasses < 2 {
		return fmt.Errorf("%w: need at least 2 classes (got %d)", ErrInvalidConfig, numClasses)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: noise fraction must be in [0, 1] (got %v)", ErrInvalidConfig, p)
	}
	return nil
}

// DifferentLabel draws uniform labels in [0, numClasses)
// until one differs from current.
//
// The expected number of draws is numClasses/(numClasses-1).
// The loop is unbounded, but terminates with probability 1.
//
// It panics if numClasses < 2.
func DifferentLabel(current, numClasses int, gen *rand.Rand) int {
	if numClasses < 2 {
		panic("at least two classes are required")
	}
	for {
		if l := gen.Intn(numClasses); l != current {
			return l
		}
	}
}
