package trainer

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

// A Target is a device on which a network can be trained.
type Target interface {
	// Name describes the device.
	Name() string

	// Available reports whether the device can be used on
	// this host.
	Available() bool

	// Init prepares the process to run on the device.
	// It must be called before a network is built.
	Init()

	// Creator creates the vectors which live on the
	// device.
	Creator() anyvec.Creator
}

// CPU is a Target which runs on the host processor.
type CPU struct {
	// Cores is the number of logical cores.
	Cores int

	// Brand is the processor name.
	Brand string

	// AVX2 indicates that the processor supports AVX2.
	AVX2 bool
}

// ProbeCPU inspects the host processor.
func ProbeCPU() *CPU {
	return &CPU{
		Cores: cpuid.CPU.LogicalCores,
		Brand: cpuid.CPU.BrandName,
		AVX2:  cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// Name returns a description of the processor.
func (c *CPU) Name() string {
	res := fmt.Sprintf("cpu (%d cores", c.Cores)
	if c.Brand != "" {
		res += ", " + c.Brand
	}
	if c.AVX2 {
		res += ", avx2"
	}
	return res + ")"
}

// Available returns true.
func (c *CPU) Available() bool {
	return true
}

// Init selects batch-parallel convolutions when there is
// more than one core.
func (c *CPU) Init() {
	if c.Cores > 1 {
		anyconv.SetConverMaker(anyconv.MakeParallelConver)
	} else {
		anyconv.SetConverMaker(anyconv.MakeDefaultConver)
	}
}

// Creator returns a 32-bit CPU creator.
func (c *CPU) Creator() anyvec.Creator {
	return anyvec32.CurrentCreator()
}

// SelectTarget returns the first available target.
// If none is available, the host CPU is used.
func SelectTarget(targets ...Target) Target {
	for _, t := range targets {
		if t.Available() {
			return t
		}
	}
	return ProbeCPU()
}
