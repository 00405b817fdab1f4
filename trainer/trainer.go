// Package trainer fits image classifiers with mini-batch
// Adam and measures their accuracy.
package trainer

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/essentials"
)

// A State is a phase of a training run.
type State int

// These are the phases of a training run, in order.
const (
	NotStarted State = iota
	EpochRunning
	EpochDone
	Finished
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case EpochRunning:
		return "EpochRunning"
	case EpochDone:
		return "EpochDone"
	case Finished:
		return "Finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A Trainer runs the training loop for a network.
//
// The Trainer is the only writer of the network's
// parameters.
type Trainer struct {
	Config Config
	Model  anynet.Layer
	Params []*anydiff.Var
	Target Target

	// Progress receives a line at the end of every epoch.
	// If nil, os.Stdout is used.
	Progress io.Writer

	// Optimizer transforms each gradient before the step.
	// If nil, an anysgd.Adam with default decay rates is
	// created when training starts.
	Optimizer anysgd.Transformer

	// Rand chooses the batch order.
	// If nil, a generator seeded from Config.Seed is used.
	Rand *rand.Rand

	state State
}

// State returns the phase of the run.
func (t *Trainer) State() State {
	return t.state
}

// Train runs Config.Epochs passes over src and returns the
// mean batch loss of each epoch.
//
// After every epoch, a progress line is written.
// Panics from the network propagate to the caller.
func (t *Trainer) Train(src SampleSource) ([]float64, error) {
	if err := t.Config.Validate(); err != nil {
		return nil, essentials.AddCtx("train", err)
	}
	if src.Len() == 0 {
		return nil, fmt.Errorf("train: empty training set")
	}
	if t.Optimizer == nil {
		t.Optimizer = &anysgd.Adam{}
	}
	if t.Rand == nil {
		t.Rand = newRand(t.Config.Seed)
	}
	c := t.Target.Creator()
	ff := NewBatchTrainer(t.Model, t.Params, t.Config.MaxGos)

	losses := make([]float64, 0, t.Config.Epochs)
	for epoch := 0; epoch < t.Config.Epochs; epoch++ {
		t.state = EpochRunning
		var total float64
		batches := Batches(src.Len(), t.Config.BatchSize, t.Rand)
		for _, indices := range batches {
			samples := &Samples{
				Source:     src,
				Creator:    c,
				NumClasses: t.Config.NumClasses,
				Indices:    indices,
			}
			loss, err := t.step(ff, samples)
			if err != nil {
				return losses, essentials.AddCtx(fmt.Sprintf("train epoch %d", epoch+1), err)
			}
			total += loss
		}
		mean := total / float64(len(batches))
		losses = append(losses, mean)
		t.state = EpochDone
		fmt.Fprintf(t.progress(), "Epoch %d/%d, Loss: %.4f\n", epoch+1, t.Config.Epochs, mean)
	}
	t.state = Finished

	return losses, nil
}

// step performs one optimizer update and returns the
// mean loss of the batch before the update.
func (t *Trainer) step(ff *anyff.Trainer, samples *Samples) (float64, error) {
	batch, err := ff.Fetch(samples)
	if err != nil {
		return 0, err
	}
	grad := ff.Gradient(batch)
	loss := numericFloat(ff.LastCost)

	grad = t.Optimizer.Transform(grad)
	grad.Scale(samples.Creator.MakeNumeric(-t.Config.LearningRate))
	grad.AddToVars()

	return loss, nil
}

func (t *Trainer) progress() io.Writer {
	if t.Progress == nil {
		return os.Stdout
	}
	return t.Progress
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
