// Command double-descent trains a ResNet-18 on CIFAR-10
// with a fraction of corrupted training labels, then
// reports its test accuracy.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ZakariaPZ/double-descent/cifar"
	"github.com/ZakariaPZ/double-descent/labelnoise"
	"github.com/ZakariaPZ/double-descent/resnet"
	"github.com/ZakariaPZ/double-descent/trainer"
	"github.com/unixpickle/essentials"
)

func main() {
	cfg := trainer.DefaultConfig()
	cfg.NumClasses = len(cifar.ClassNames)

	var dataDir string
	var savePath string
	flag.StringVar(&dataDir, "data", "./data", "dataset cache directory")
	flag.StringVar(&savePath, "save", "", "file for the trained network (optional)")
	flag.IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "passes over the training set")
	flag.Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "Adam step size")
	flag.Float64Var(&cfg.NoiseFraction, "p", cfg.NoiseFraction, "fraction of corrupted training labels")
	flag.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "training batch size")
	flag.IntVar(&cfg.EvalBatchSize, "evalbatch", cfg.EvalBatchSize, "evaluation batch size")
	flag.IntVar(&cfg.Width, "k", cfg.Width, "base channel count k of the ResNet (stages use k, 2k, 4k, 8k)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 for time-based)")
	flag.IntVar(&cfg.MaxGos, "gos", cfg.MaxGos, "goroutines per batch (0 for GOMAXPROCS)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		essentials.Die(err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	gen := rand.New(rand.NewSource(cfg.Seed))

	log.Println("Loading CIFAR-10...")
	if err := cifar.Download(dataDir); err != nil {
		essentials.Die(err)
	}
	trainSet, err := cifar.Load(dataDir, true)
	if err != nil {
		essentials.Die(err)
	}
	testSet, err := cifar.Load(dataDir, false)
	if err != nil {
		essentials.Die(err)
	}

	noisy, err := labelnoise.Corrupt(trainSet.Labels, cfg.NumClasses, cfg.NoiseFraction, gen)
	if err != nil {
		essentials.Die(err)
	}
	trainSet, err = trainSet.WithLabels(noisy.Labels)
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("Corrupted %d of %d training labels", len(noisy.Noisy), trainSet.Len())

	target := trainer.SelectTarget()
	target.Init()
	log.Println("Training on", target.Name())

	model := resnet.New(target.Creator(), cfg.Width, cfg.NumClasses)
	t := &trainer.Trainer{
		Config: cfg,
		Model:  model,
		Params: model.Parameters(),
		Target: target,
		Rand:   gen,
	}
	if _, err := t.Train(trainSet); err != nil {
		essentials.Die(err)
	}

	acc, err := trainer.Evaluate(model, testSet, target, cfg.EvalBatchSize, cfg.MaxGos)
	if err != nil {
		essentials.Die(err)
	}
	fmt.Println(acc)

	if savePath != "" {
		if err := resnet.Save(savePath, model); err != nil {
			essentials.Die(err)
		}
		log.Println("Saved network to", savePath)
	}
}
