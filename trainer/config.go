package trainer

import (
	"fmt"

	"github.com/ZakariaPZ/double-descent/labelnoise"
)

// Config stores the hyper-parameters of an experiment.
//
// A Config is passed by value and never modified once a
// run has started.
type Config struct {
	// Epochs is the number of passes over the training set.
	Epochs int

	// LearningRate is the Adam step size.
	LearningRate float64

	// NoiseFraction is the fraction of training labels which
	// are corrupted before training.
	NoiseFraction float64

	// BatchSize is the number of examples per step.
	BatchSize int

	// EvalBatchSize is the number of examples per forward
	// pass during evaluation.
	EvalBatchSize int

	// Width is the ResNet width parameter k, the channel
	// count of the first stage.
	// Stages have k, 2k, 4k, and 8k channels; k=64 is the
	// standard ResNet-18.
	Width int

	// NumClasses is the number of labels.
	NumClasses int

	// Seed seeds every random choice of the run.
	// If it is 0, a time-based seed is used.
	Seed int64

	// MaxGos limits the goroutines used to assemble each
	// batch.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// DefaultConfig returns the configuration used for the
// label noise experiments.
func DefaultConfig() Config {
	return Config{
		Epochs:        4000,
		LearningRate:  1e-4,
		NoiseFraction: 0.1,
		BatchSize:     128,
		EvalBatchSize: 512,
		Width:         1,
		NumClasses:    10,
	}
}

// Validate checks that the configuration is runnable.
// Errors wrap labelnoise.ErrInvalidConfig.
func (c Config) Validate() error {
	if err := labelnoise.Validate(c.NumClasses, c.NoiseFraction); err != nil {
		return err
	}
	positive := []struct {
		name  string
		value int
	}{
		{"epochs", c.Epochs},
		{"batch size", c.BatchSize},
		{"eval batch size", c.EvalBatchSize},
		{"width", c.Width},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0 (got %d)", labelnoise.ErrInvalidConfig,
				p.name, p.value)
		}
	}
	if !(c.LearningRate > 0) {
		return fmt.Errorf("%w: learning rate must be > 0 (got %v)",
			labelnoise.ErrInvalidConfig, c.LearningRate)
	}
	if c.MaxGos < 0 {
		return fmt.Errorf("%w: max goroutines must be >= 0 (got %d)",
			labelnoise.ErrInvalidConfig, c.MaxGos)
	}
	return nil
}
