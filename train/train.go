// Package train fits a classifier on an assembled dataset: a sequential
// mini-batch loop with Adam updates, early stopping on validation loss and
// best-checkpoint selection.
package train

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/voicecast/audioml/dataset"
	"github.com/voicecast/audioml/logging"
)

// Params configures training.
type Params struct {
	Epochs       int     `json:"epochs"`        // (default: 50)
	LearningRate float64 `json:"learning_rate"` // (default: 0.001)
	BatchSize    int     `json:"batch_size"`    // (default: 32)
	Patience     int     `json:"patience"`      // Early stopping patience in epochs (default: 5)
	Seed         int64   `json:"seed"`          // Weight init and shuffle seed (default: 42)
}

// DefaultParams returns the standard training configuration.
func DefaultParams() Params {
	return Params{
		Epochs:       50,
		LearningRate: 0.001,
		BatchSize:    32,
		Patience:     5,
		Seed:         42,
	}
}

// EpochMetrics is one epoch's train and validation measurements.
type EpochMetrics struct {
	Epoch       int     `json:"epoch"`
	TrainLoss   float64 `json:"train_loss"`
	ValLoss     float64 `json:"val_loss"`
	ValAccuracy float64 `json:"val_accuracy"`
}

// EpochFunc observes training progress after each epoch.
type EpochFunc func(epoch, totalEpochs int, metrics EpochMetrics)

// Result is the outcome of a completed training run.
type Result struct {
	Artifact     *ModelArtifact
	History      []EpochMetrics
	BestEpoch    int
	BestValLoss  float64
	FinalMetrics Metrics
}

// Trainer runs the sequential training loop.
type Trainer struct {
	params Params
}

// NewTrainer creates a trainer.
func NewTrainer(params Params) *Trainer {
	// Set defaults
	if params.Epochs <= 0 {
		params.Epochs = 50
	}
	if params.LearningRate <= 0 {
		params.LearningRate = 0.001
	}
	if params.BatchSize <= 0 {
		params.BatchSize = 32
	}
	if params.Patience <= 0 {
		params.Patience = 5
	}
	if params.Seed == 0 {
		params.Seed = 42
	}
	return &Trainer{params: params}
}

// Train fits a softmax linear classifier on the dataset. The best weights by
// validation loss are kept (compare-and-replace under sequential execution),
// and training stops early after Patience epochs without improvement.
func (t *Trainer) Train(ctx context.Context, ds *dataset.Dataset, onEpoch EpochFunc) (*Result, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "trainer",
		"function":  "Train",
	})

	if len(ds.XTrain) == 0 || len(ds.XVal) == 0 {
		return nil, fmt.Errorf("dataset has empty split: %d train, %d val", len(ds.XTrain), len(ds.XVal))
	}

	featureDim := len(ds.XTrain[0])
	numClasses := ds.Stats.NumClasses
	if numClasses < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}

	model := newSoftmaxModel(featureDim, numClasses, t.params.Seed)
	opt := newAdam(model, t.params.LearningRate)
	rng := rand.New(rand.NewSource(t.params.Seed))

	logger.Info("Starting training", logging.Fields{
		"train_samples": len(ds.XTrain),
		"val_samples":   len(ds.XVal),
		"feature_dim":   featureDim,
		"num_classes":   numClasses,
		"epochs":        t.params.Epochs,
	})

	var history []EpochMetrics
	bestValLoss := math.Inf(1)
	bestEpoch := 0
	var bestModel *softmaxModel
	sinceImprovement := 0

	order := make([]int, len(ds.XTrain))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= t.params.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		trainLoss := 0.0
		batches := 0
		for start := 0; start < len(order); start += t.params.BatchSize {
			end := min(start+t.params.BatchSize, len(order))
			batch := order[start:end]

			loss := model.trainBatch(ds.XTrain, ds.YTrain, batch, opt)
			trainLoss += loss
			batches++
		}
		trainLoss /= float64(batches)

		valLoss, valAccuracy := model.evaluate(ds.XVal, ds.YVal)

		if math.IsNaN(trainLoss) || math.IsNaN(valLoss) {
			return nil, fmt.Errorf("training diverged at epoch %d", epoch)
		}

		metrics := EpochMetrics{
			Epoch:       epoch,
			TrainLoss:   trainLoss,
			ValLoss:     valLoss,
			ValAccuracy: valAccuracy,
		}
		history = append(history, metrics)

		if valLoss < bestValLoss {
			bestValLoss = valLoss
			bestEpoch = epoch
			bestModel = model.clone()
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		logger.Debug("Epoch finished", logging.Fields{
			"epoch":        epoch,
			"train_loss":   trainLoss,
			"val_loss":     valLoss,
			"val_accuracy": valAccuracy,
		})

		if onEpoch != nil {
			onEpoch(epoch, t.params.Epochs, metrics)
		}

		if sinceImprovement >= t.params.Patience {
			logger.Info("Early stopping", logging.Fields{
				"epoch":         epoch,
				"best_epoch":    bestEpoch,
				"best_val_loss": bestValLoss,
			})
			break
		}
	}

	if bestModel == nil {
		bestModel = model
	}

	predictions := make([]int, len(ds.XVal))
	for i, x := range ds.XVal {
		predictions[i] = bestModel.predict(x)
	}
	finalMetrics := ComputeMetrics(ds.YVal, predictions, numClasses)

	logger.Info("Training finished", logging.Fields{
		"best_epoch":    bestEpoch,
		"best_val_loss": bestValLoss,
		"accuracy":      finalMetrics.Accuracy,
		"f1":            finalMetrics.F1,
	})

	return &Result{
		Artifact: &ModelArtifact{
			Weights:    bestModel.weights,
			Bias:       bestModel.bias,
			FeatureDim: featureDim,
			NumClasses: numClasses,
			Params:     t.params,
			Metrics:    finalMetrics,
		},
		History:      history,
		BestEpoch:    bestEpoch,
		BestValLoss:  bestValLoss,
		FinalMetrics: finalMetrics,
	}, nil
}
