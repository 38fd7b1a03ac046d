package linear

import "math"

type Options struct {
	Epochs       int
	LearningRate float64
	// L2 penalty applied to coefficients, never to the bias.
	L2 float64
}

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
	// Per-feature standardisation learned at training time.
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
}

type Metrics struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
	Samples  int     `json:"samples"`
}

// TrainLogistic fits a binary classifier with batch gradient descent on
// standardised features. labels must be 0 or 1.
func TrainLogistic(samples [][]float64, labels []float64, opts Options) (Weights, Metrics) {
	if opts.Epochs <= 0 {
		opts.Epochs = 300
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.1
	}

	n := len(samples)
	if n == 0 || len(labels) != n {
		return Weights{}, Metrics{}
	}
	featureCount := len(samples[0])
	means, scales := standardisation(samples, featureCount)
	scaled := make([][]float64, n)
	for i, sample := range samples {
		scaled[i] = standardise(sample, means, scales)
	}

	coefficients := make([]float64, featureCount)
	var bias float64
	grad := make([]float64, featureCount)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var biasGrad float64
		for i, sample := range scaled {
			residual := sigmoid(dot(coefficients, sample)+bias) - labels[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += residual * sample[j]
			}
			biasGrad += residual
		}
		for j := 0; j < featureCount; j++ {
			coefficients[j] -= opts.LearningRate * (grad[j]/float64(n) + opts.L2*coefficients[j])
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	weights := Weights{Bias: bias, Coefficients: coefficients, Means: means, Scales: scales}
	return weights, evaluate(weights, samples, labels)
}

// Predict returns the positive-class probability for a raw (unscaled) sample.
func Predict(weights Weights, sample []float64) float64 {
	x := sample
	if len(weights.Means) == len(sample) && len(weights.Scales) == len(sample) {
		x = standardise(sample, weights.Means, weights.Scales)
	}
	return sigmoid(dot(weights.Coefficients, x) + weights.Bias)
}

func standardisation(samples [][]float64, featureCount int) ([]float64, []float64) {
	means := make([]float64, featureCount)
	scales := make([]float64, featureCount)
	n := float64(len(samples))
	for _, sample := range samples {
		for j := 0; j < featureCount; j++ {
			means[j] += sample[j]
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, sample := range samples {
		for j := 0; j < featureCount; j++ {
			d := sample[j] - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func standardise(sample, means, scales []float64) []float64 {
	out := make([]float64, len(sample))
	for j, v := range sample {
		out[j] = (v - means[j]) / scales[j]
	}
	return out
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights) && i < len(sample); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func evaluate(weights Weights, samples [][]float64, labels []float64) Metrics {
	var loss float64
	var correct int
	for i, sample := range samples {
		p := Predict(weights, sample)
		loss += -labels[i]*math.Log(p+1e-9) - (1-labels[i])*math.Log(1-p+1e-9)
		if (p >= 0.5) == (labels[i] == 1) {
			correct++
		}
	}
	n := float64(len(samples))
	return Metrics{Loss: loss / n, Accuracy: float64(correct) / n, Samples: len(samples)}
}
