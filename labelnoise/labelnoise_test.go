package labelnoise

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNumNoisy(t *testing.T) {
	cases := []struct {
		n        int
		p        float64
		expected int
	}{
		{10, 0.3, 3},
		{10, 0, 0},
		{10, 1, 10},
		{7, 0.5, 3},
		{50000, 0.1, 5000},
		{0, 0.7, 0},
	}
	for _, c := range cases {
		if actual := NumNoisy(c.n, c.p); actual != c.expected {
			t.Errorf("NumNoisy(%d, %v): expected %d but got %d", c.n, c.p, c.expected, actual)
		}
	}
}

func TestCorrupt(t *testing.T) {
	gen := rand.New(rand.NewSource(1337))
	for _, n := range []int{1, 2, 10, 37, 500} {
		for _, p := range []float64{0, 0.1, 0.3, 0.5, 0.99, 1} {
			labels := randomLabels(gen, n, 10)
			orig := append([]int{}, labels...)

			res, err := Corrupt(labels, 10, p, gen)
			if err != nil {
				t.Fatal(err)
			}
			checkResult(t, orig, labels, res, 10, p)
		}
	}
}

func TestCorruptScenario(t *testing.T) {
	labels := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	res, err := Corrupt(labels, 10, 0.3, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Noisy) != 3 {
		t.Fatalf("expected 3 noisy indices but got %d", len(res.Noisy))
	}
	for _, idx := range res.Noisy {
		if res.Labels[idx] == labels[idx] {
			t.Errorf("index %d kept label %d", idx, labels[idx])
		}
	}
}

func TestCorruptNoNoise(t *testing.T) {
	gen := rand.New(rand.NewSource(2))
	labels := randomLabels(gen, 100, 10)
	res, err := Corrupt(labels, 10, 0, gen)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Noisy) != 0 {
		t.Fatalf("unexpected noisy indices: %v", res.Noisy)
	}
	for i, l := range labels {
		if res.Labels[i] != l {
			t.Fatalf("label %d changed from %d to %d", i, l, res.Labels[i])
		}
	}
	if len(res.Overrides()) != 0 {
		t.Error("expected no overrides")
	}
}

func TestCorruptTwoClasses(t *testing.T) {
	labels := []int{0, 1, 0, 1, 1, 0}
	res, err := Corrupt(labels, 2, 1, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range labels {
		if res.Labels[i] != 1-l {
			t.Errorf("index %d: expected %d but got %d", i, 1-l, res.Labels[i])
		}
	}
}

func TestCorruptOverrides(t *testing.T) {
	labels := []int{3, 3, 3, 3, 3, 3, 3, 3}
	res, err := Corrupt(labels, 4, 0.5, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	overrides := res.Overrides()
	if len(overrides) != 4 {
		t.Fatalf("expected 4 overrides but got %d", len(overrides))
	}
	for idx, l := range overrides {
		if l == 3 || res.Labels[idx] != l {
			t.Errorf("bad override %d -> %d", idx, l)
		}
	}
}

func TestCorruptInvalid(t *testing.T) {
	cases := []struct {
		name       string
		labels     []int
		numClasses int
		p          float64
	}{
		{"OneClass", []int{0, 0}, 1, 0.5},
		{"ZeroClasses", nil, 0, 0},
		{"NegativeFraction", []int{0, 1}, 2, -0.1},
		{"LargeFraction", []int{0, 1}, 2, 1.5},
		{"NaNFraction", []int{0, 1}, 2, math.NaN()},
		{"LabelOutOfRange", []int{0, 4}, 3, 0.5},
		{"NegativeLabel", []int{-1, 0}, 3, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Corrupt(c.labels, c.numClasses, c.p, rand.New(rand.NewSource(0)))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig but got %v", err)
			}
		})
	}
}

func TestDifferentLabel(t *testing.T) {
	gen := rand.New(rand.NewSource(42))
	for _, numClasses := range []int{2, 3, 10} {
		counts := make([]int, numClasses)
		for i := 0; i < 3000; i++ {
			current := i % numClasses
			l := DifferentLabel(current, numClasses, gen)
			if l == current || l < 0 || l >= numClasses {
				t.Fatalf("bad label %d for current %d (classes=%d)", l, current, numClasses)
			}
			counts[l]++
		}
		for l, c := range counts {
			if c == 0 {
				t.Errorf("classes=%d: label %d never drawn", numClasses, l)
			}
		}
	}
}

func TestDifferentLabelDraws(t *testing.T) {
	// With two classes, each draw succeeds with probability
	// 1/2, so 64 failures in a row would be astronomically
	// unlikely.
	src := &countingSource{Source: rand.NewSource(7)}
	gen := rand.New(src)
	for i := 0; i < 1000; i++ {
		src.calls = 0
		DifferentLabel(i%2, 2, gen)
		if src.calls > 64 {
			t.Fatalf("draw took %d random calls", src.calls)
		}
	}
}

func TestDifferentLabelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	DifferentLabel(0, 1, rand.New(rand.NewSource(0)))
}

type countingSource struct {
	rand.Source
	calls int
}

func (c *countingSource) Int63() int64 {
	c.calls++
	return c.Source.Int63()
}

func randomLabels(gen *rand.Rand, n, numClasses int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = gen.Intn(numClasses)
	}
	return res
}

func checkResult(t *testing.T, orig, input []int, res *Result, numClasses int, p float64) {
	for i, l := range orig {
		if input[i] != l {
			t.Fatal("input labels were modified")
		}
	}
	if len(res.Labels) != len(orig) {
		t.Fatalf("expected %d labels but got %d", len(orig), len(res.Labels))
	}
	expected := NumNoisy(len(orig), p)
	if len(res.Noisy) != expected {
		t.Fatalf("n=%d p=%v: expected %d noisy indices but got %d", len(orig), p,
			expected, len(res.Noisy))
	}
	seen := map[int]bool{}
	for _, idx := range res.Noisy {
		if idx < 0 || idx >= len(orig) {
			t.Fatalf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
	for i, l := range res.Labels {
		if l < 0 || l >= numClasses {
			t.Fatalf("label %d out of range", l)
		}
		if seen[i] && l == orig[i] {
			t.Fatalf("noisy index %d kept its label", i)
		} else if !seen[i] && l != orig[i] {
			t.Fatalf("clean index %d changed its label", i)
		}
	}
}
