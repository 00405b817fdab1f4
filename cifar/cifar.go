// Package cifar loads the CIFAR-10 image classification
// dataset in its binary distribution format.
package cifar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Image dimensions for CIFAR-10.
const (
	ImageWidth  = 32
	ImageHeight = 32
	ImageDepth  = 3

	ImageSize = ImageWidth * ImageHeight * ImageDepth
)

const (
	recordSize = 1 + ImageSize
	batchDir   = "cifar-10-batches-bin"
	testFile   = "test_batch.bin"
)

// ClassNames lists the CIFAR-10 classes, indexed by label.
var ClassNames = []string{"plane", "car", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck"}

// A Dataset is an ordered list of labeled images.
//
// Each image is stored in the raw binary layout, with the
// red, green, and blue planes one after another.
type Dataset struct {
	Images [][]byte
	Labels []int
}

// Load reads the training or testing set from the cache
// directory dir.
// The directory must already contain the extracted
// dataset (see Download).
func Load(dir string, train bool) (*Dataset, error) {
	res := &Dataset{}
	for _, name := range batchFiles(train) {
		batch, err := readBatchFile(filepath.Join(dir, batchDir, name))
		if err != nil {
			return nil, essentials.AddCtx("load CIFAR-10", err)
		}
		res.Images = append(res.Images, batch.Images...)
		res.Labels = append(res.Labels, batch.Labels...)
	}
	return res, nil
}

// ReadBatch decodes every record in a binary batch.
func ReadBatch(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	res := &Dataset{}
	for {
		record := make([]byte, recordSize)
		n, err := io.ReadFull(br, record)
		if err == io.EOF {
			return res, nil
		} else if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read batch: truncated record (%d bytes)", n)
		} else if err != nil {
			return nil, essentials.AddCtx("read batch", err)
		}
		label := int(record[0])
		if label >= len(ClassNames) {
			return nil, fmt.Errorf("read batch: invalid label %d", label)
		}
		res.Labels = append(res.Labels, label)
		res.Images = append(res.Images, record[1:])
	}
}

// Len returns the number of images.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Label returns the label of the i-th image.
func (d *Dataset) Label(i int) int {
	return d.Labels[i]
}

// WithLabels creates a dataset sharing d's images with a
// different list of labels.
func (d *Dataset) WithLabels(labels []int) (*Dataset, error) {
	if len(labels) != len(d.Images) {
		return nil, fmt.Errorf("label count %d does not match image count %d",
			len(labels), len(d.Images))
	}
	return &Dataset{Images: d.Images, Labels: append([]int{}, labels...)}, nil
}

// Input converts the i-th image into a tensor for a
// network.
//
// The tensor is row-major depth-minor, and every channel
// value v is mapped to (v/255-0.5)/0.5, which lies in the
// range [-1, 1].
func (d *Dataset) Input(c anyvec.Creator, i int) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(Normalize(d.Images[i])))
}

// Normalize converts a raw planar image into normalized
// row-major depth-minor floats.
func Normalize(img []byte) []float64 {
	if len(img) != ImageSize {
		panic("incorrect image size")
	}
	plane := ImageWidth * ImageHeight
	res := make([]float64, ImageSize)
	idx := 0
	for pixel := 0; pixel < plane; pixel++ {
		for z := 0; z < ImageDepth; z++ {
			v := float64(img[z*plane+pixel]) / 0xff
			res[idx] = (v - 0.5) / 0.5
			idx++
		}
	}
	return res
}

func batchFiles(train bool) []string {
	if !train {
		return []string{testFile}
	}
	var names []string
	for i := 1; i <= 5; i++ {
		names = append(names, fmt.Sprintf("data_batch_%d.bin", i))
	}
	return names
}

func readBatchFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := ReadBatch(f)
	if err != nil {
		return nil, essentials.AddCtx(filepath.Base(path), err)
	}
	if res.Len() == 0 {
		return nil, errors.New(filepath.Base(path) + ": empty batch")
	}
	return res, nil
}
