package train

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// softmaxModel is a linear classifier with a softmax output layer, trained
// by cross-entropy gradient descent.
type softmaxModel struct {
	weights [][]float64 // numClasses x featureDim
	bias    []float64   // numClasses
}

func newSoftmaxModel(featureDim, numClasses int, seed int64) *softmaxModel {
	rng := rand.New(rand.NewSource(seed))
	scale := 1.0 / math.Sqrt(float64(featureDim))

	weights := make([][]float64, numClasses)
	for c := range weights {
		weights[c] = make([]float64, featureDim)
		for d := range weights[c] {
			weights[c][d] = rng.NormFloat64() * scale
		}
	}
	return &softmaxModel{
		weights: weights,
		bias:    make([]float64, numClasses),
	}
}

func (m *softmaxModel) clone() *softmaxModel {
	weights := make([][]float64, len(m.weights))
	for c := range weights {
		weights[c] = make([]float64, len(m.weights[c]))
		copy(weights[c], m.weights[c])
	}
	bias := make([]float64, len(m.bias))
	copy(bias, m.bias)
	return &softmaxModel{weights: weights, bias: bias}
}

// probabilities returns the softmax class distribution for one input.
func (m *softmaxModel) probabilities(x []float64) []float64 {
	logits := make([]float64, len(m.weights))
	for c := range m.weights {
		logits[c] = floats.Dot(m.weights[c], x) + m.bias[c]
	}

	// Shift by the max logit for numerical stability
	maxLogit := floats.Max(logits)
	sum := 0.0
	for c, logit := range logits {
		logits[c] = math.Exp(logit - maxLogit)
		sum += logits[c]
	}
	for c := range logits {
		logits[c] /= sum
	}
	return logits
}

func (m *softmaxModel) predict(x []float64) int {
	probs := m.probabilities(x)
	best := 0
	for c, p := range probs {
		if p > probs[best] {
			best = c
		}
	}
	return best
}

// trainBatch accumulates softmax cross-entropy gradients over one mini-batch
// and applies a single optimizer step. Returns the mean batch loss.
func (m *softmaxModel) trainBatch(x [][]float64, y []int, batch []int, opt *adam) float64 {
	numClasses := len(m.weights)
	featureDim := len(m.weights[0])

	gradW := make([][]float64, numClasses)
	for c := range gradW {
		gradW[c] = make([]float64, featureDim)
	}
	gradB := make([]float64, numClasses)

	loss := 0.0
	for _, i := range batch {
		probs := m.probabilities(x[i])
		loss += -math.Log(math.Max(probs[y[i]], 1e-12))

		for c := 0; c < numClasses; c++ {
			// dL/dlogit = p - 1{c == y}
			delta := probs[c]
			if c == y[i] {
				delta -= 1.0
			}
			floats.AddScaled(gradW[c], delta, x[i])
			gradB[c] += delta
		}
	}

	n := float64(len(batch))
	for c := range gradW {
		floats.Scale(1.0/n, gradW[c])
		gradB[c] /= n
	}

	opt.step(m, gradW, gradB)

	return loss / n
}

// evaluate returns mean cross-entropy loss and accuracy over a split.
func (m *softmaxModel) evaluate(x [][]float64, y []int) (loss, accuracy float64) {
	correct := 0
	for i := range x {
		probs := m.probabilities(x[i])
		loss += -math.Log(math.Max(probs[y[i]], 1e-12))

		best := 0
		for c, p := range probs {
			if p > probs[best] {
				best = c
			}
		}
		if best == y[i] {
			correct++
		}
	}
	n := float64(len(x))
	return loss / n, float64(correct) / n
}

// adam is the Adam optimizer over the model's weight matrix and bias.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	t       int

	mW, vW [][]float64
	mB, vB []float64
}

func newAdam(model *softmaxModel, lr float64) *adam {
	numClasses := len(model.weights)
	featureDim := len(model.weights[0])

	mW := make([][]float64, numClasses)
	vW := make([][]float64, numClasses)
	for c := range mW {
		mW[c] = make([]float64, featureDim)
		vW[c] = make([]float64, featureDim)
	}

	return &adam{
		lr:      lr,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-8,
		mW:      mW,
		vW:      vW,
		mB:      make([]float64, numClasses),
		vB:      make([]float64, numClasses),
	}
}

func (a *adam) step(model *softmaxModel, gradW [][]float64, gradB []float64) {
	a.t++
	correction1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	correction2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for c := range model.weights {
		for d := range model.weights[c] {
			g := gradW[c][d]
			a.mW[c][d] = a.beta1*a.mW[c][d] + (1-a.beta1)*g
			a.vW[c][d] = a.beta2*a.vW[c][d] + (1-a.beta2)*g*g
			mHat := a.mW[c][d] / correction1
			vHat := a.vW[c][d] / correction2
			model.weights[c][d] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
		}

		g := gradB[c]
		a.mB[c] = a.beta1*a.mB[c] + (1-a.beta1)*g
		a.vB[c] = a.beta2*a.vB[c] + (1-a.beta2)*g*g
		mHat := a.mB[c] / correction1
		vHat := a.vB[c] / correction2
		model.bias[c] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
	}
}
