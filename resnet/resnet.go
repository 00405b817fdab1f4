// Package resnet builds pre-activation residual networks
// for small images, with a configurable width.
package resnet

import (
	"io/ioutil"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// Input dimensions expected by New.
const (
	InputWidth  = 32
	InputHeight = 32
	InputDepth  = 3
)

// New creates a randomly initialized ResNet-18 with width
// parameter k.
//
// The network has an initial 3x3 convolution with k
// filters, followed by four stages of two residual blocks
// with k, 2k, 4k, and 8k filters.
// Every stage after the first halves the spatial size.
// The output is a vector of numClasses logits per image;
// no softmax is applied.
func New(c anyvec.Creator, k, numClasses int) anynet.Net {
	b := &builder{
		creator: c,
		width:   InputWidth,
		height:  InputHeight,
		depth:   InputDepth,
	}
	net := anynet.Net{b.conv3x3(k, 1)}
	for stage, mult := range []int{1, 2, 4, 8} {
		stride := 2
		if stage == 0 {
			stride = 1
		}
		net = append(net, b.block(k*mult, stride), b.block(k*mult, 1))
	}
	return append(net, b.head(numClasses)...)
}

// Save serializes a network to a file.
func Save(path string, net anynet.Net) error {
	data, err := serializer.SerializeAny(net)
	if err != nil {
		return essentials.AddCtx("save network", err)
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save network", err)
	}
	return nil
}

// Load deserializes a network saved with Save.
func Load(path string) (anynet.Net, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load network", err)
	}
	var net anynet.Net
	if err := serializer.DeserializeAny(data, &net); err != nil {
		return nil, essentials.AddCtx("load network", err)
	}
	return net, nil
}

// A builder creates layers while tracking the dimensions
// of the tensor flowing through the network.
type builder struct {
	creator anyvec.Creator

	width  int
	height int
	depth  int
}

// block creates a pre-activation residual block.
//
// When the block changes the tensor shape, the shortcut is
// a strided 1x1 convolution of the pre-activated input.
// Otherwise, the raw input is added back unchanged.
func (b *builder) block(filters, stride int) anynet.Layer {
	if stride == 1 && filters == b.depth {
		return &anyconv.Residual{
			Layer: anynet.Net{
				anyconv.NewBatchNorm(b.creator, b.depth),
				anynet.ReLU,
				b.conv3x3(filters, 1),
				anyconv.NewBatchNorm(b.creator, filters),
				anynet.ReLU,
				b.conv3x3(filters, 1),
			},
		}
	}
	preAct := anynet.Net{anyconv.NewBatchNorm(b.creator, b.depth), anynet.ReLU}
	inWidth, inHeight, inDepth := b.width, b.height, b.depth
	projection := b.conv(filters, 1, stride)
	b.width, b.height, b.depth = inWidth, inHeight, inDepth
	mainPath := anynet.Net{
		b.conv3x3(filters, stride),
		anyconv.NewBatchNorm(b.creator, filters),
		anynet.ReLU,
		b.conv3x3(filters, 1),
	}
	return append(preAct, &anyconv.Residual{Layer: mainPath, Projection: projection})
}

// head creates the final normalization, pooling, and
// classification layers.
func (b *builder) head(numClasses int) anynet.Net {
	return anynet.Net{
		anyconv.NewBatchNorm(b.creator, b.depth),
		anynet.ReLU,
		&anyconv.MeanPool{
			SpanX:       b.width,
			SpanY:       b.height,
			StrideX:     b.width,
			StrideY:     b.height,
			InputWidth:  b.width,
			InputHeight: b.height,
			InputDepth:  b.depth,
		},
		anynet.NewFC(b.creator, b.depth, numClasses),
	}
}

// conv3x3 creates a zero-padded 3x3 convolution.
func (b *builder) conv3x3(filters, stride int) anynet.Net {
	padding := &anyconv.Padding{
		InputWidth:    b.width,
		InputHeight:   b.height,
		InputDepth:    b.depth,
		PaddingTop:    1,
		PaddingRight:  1,
		PaddingBottom: 1,
		PaddingLeft:   1,
	}
	b.width += 2
	b.height += 2
	return anynet.Net{padding, b.conv(filters, 3, stride)}
}

// conv creates an unpadded convolution and advances the
// tracked dimensions to its output.
func (b *builder) conv(filters, size, stride int) *anyconv.Conv {
	res := &anyconv.Conv{
		FilterCount:  filters,
		FilterWidth:  size,
		FilterHeight: size,
		StrideX:      stride,
		StrideY:      stride,
		InputWidth:   b.width,
		InputHeight:  b.height,
		InputDepth:   b.depth,
	}
	res.InitRand(b.creator)
	b.width = res.OutputWidth()
	b.height = res.OutputHeight()
	b.depth = res.OutputDepth()
	return res
}
