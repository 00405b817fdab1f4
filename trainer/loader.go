package trainer

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// A SampleSource is a list of labeled network inputs.
type SampleSource interface {
	Len() int
	Label(i int) int

	// Input creates the network input for a sample.
	// It may be called concurrently.
	Input(c anyvec.Creator, i int) anyvec.Vector
}

// Samples is an anyff.SampleList which views a subset of
// a SampleSource.
//
// The desired output of each sample is the one-hot vector
// of its label.
type Samples struct {
	Source     SampleSource
	Creator    anyvec.Creator
	NumClasses int

	// Indices are the source indices in list order.
	Indices []int
}

// Len returns the number of samples.
func (s *Samples) Len() int {
	return len(s.Indices)
}

// Swap swaps two samples.
// The source is not modified.
func (s *Samples) Swap(i, j int) {
	s.Indices[i], s.Indices[j] = s.Indices[j], s.Indices[i]
}

// Slice copies a sub-slice of the list.
func (s *Samples) Slice(i, j int) anysgd.SampleList {
	res := *s
	res.Indices = append([]int{}, s.Indices[i:j]...)
	return &res
}

// GetSample creates the sample at the list index.
func (s *Samples) GetSample(idx int) (*anyff.Sample, error) {
	srcIdx := s.Indices[idx]
	label := s.Source.Label(srcIdx)
	if label < 0 || label >= s.NumClasses {
		return nil, fmt.Errorf("sample %d: label %d out of range [0, %d)", srcIdx,
			label, s.NumClasses)
	}
	oneHot := make([]float64, s.NumClasses)
	oneHot[label] = 1
	return &anyff.Sample{
		Input:  s.Source.Input(s.Creator, srcIdx),
		Output: s.Creator.MakeVectorData(s.Creator.MakeNumericList(oneHot)),
	}, nil
}

// Batches splits a random permutation of [0, n) into
// batches of batchSize indices.
// The last batch is shorter if batchSize does not divide n.
func Batches(n, batchSize int, gen *rand.Rand) [][]int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + gen.Intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return split(indices, batchSize)
}

// OrderedBatches is like Batches, but does not shuffle.
func OrderedBatches(n, batchSize int) [][]int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return split(indices, batchSize)
}

func split(indices []int, batchSize int) [][]int {
	if batchSize <= 0 {
		panic("batch size must be positive")
	}
	var res [][]int
	for i := 0; i < len(indices); i += batchSize {
		end := i + batchSize
		if end > len(indices) {
			end = len(indices)
		}
		res = append(res, indices[i:end])
	}
	return res
}
