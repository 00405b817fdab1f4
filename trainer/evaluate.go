package trainer

import (
	"fmt"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Accuracy is a top-1 accuracy measurement.
type Accuracy struct {
	Correct int
	Total   int
}

// Percent returns the percentage of correct predictions.
// It is 0 for an empty measurement.
func (a *Accuracy) Percent() float64 {
	if a.Total == 0 {
		return 0
	}
	return 100 * float64(a.Correct) / float64(a.Total)
}

// String formats the accuracy as a report line.
func (a *Accuracy) String() string {
	return fmt.Sprintf("Accuracy of the model on the test set: %.2f%%", a.Percent())
}

// Evaluate counts the samples for which the model's
// highest-scoring output is the label.
//
// Samples are fed in index order, batchSize at a time.
// The model is only read.
func Evaluate(model anynet.Layer, src SampleSource, target Target,
	batchSize, maxGos int) (*Accuracy, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("evaluate: batch size must be > 0 (got %d)", batchSize)
	}
	fetcher := &anyff.Trainer{MaxGos: maxGos}
	numClasses := 0
	res := &Accuracy{}
	for _, indices := range OrderedBatches(src.Len(), batchSize) {
		labels := make([]int, len(indices))
		for i, idx := range indices {
			labels[i] = src.Label(idx)
			if labels[i] >= numClasses {
				numClasses = labels[i] + 1
			}
		}
		samples := &Samples{
			Source:     src,
			Creator:    target.Creator(),
			NumClasses: numClasses,
			Indices:    indices,
		}
		batch, err := fetcher.Fetch(samples)
		if err != nil {
			return nil, essentials.AddCtx("evaluate", err)
		}
		b := batch.(*anyff.Batch)
		out := model.Apply(b.Inputs, b.Num).Output()
		if out.Len()%b.Num != 0 {
			return nil, fmt.Errorf("evaluate: %d outputs for batch of %d", out.Len(), b.Num)
		}
		outClasses := out.Len() / b.Num
		for i, label := range labels {
			logits := out.Slice(i*outClasses, (i+1)*outClasses)
			if anyvec.MaxIndex(logits) == label {
				res.Correct++
			}
		}
		res.Total += b.Num
	}
	return res, nil
}
