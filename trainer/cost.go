package trainer

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anyvec"
)

// NewBatchTrainer creates an anyff.Trainer which computes
// the mean cross-entropy of a model's logits against the
// one-hot outputs of Samples.
func NewBatchTrainer(model anynet.Layer, params []*anydiff.Var, maxGos int) *anyff.Trainer {
	return &anyff.Trainer{
		Net:     anynet.Net{model, anynet.LogSoftmax},
		Cost:    anynet.DotCost{},
		Params:  params,
		Average: true,
		MaxGos:  maxGos,
	}
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", n))
	}
}
