package classifier

// TrainingSample pairs a greyscale input vector with its expected digit
// label. Dropped from memory once training completes.
type TrainingSample struct {
	Input    []float64
	Expected byte
}

// CheckpointFunc persists the network's current weights. Called after
// every CheckpointEveryEpochs epochs and whenever an epoch's summed |δ|
// falls below DeltaConvergenceThreshold.
type CheckpointFunc func(net *Network, epoch int) error

// ShouldStopFunc allows the host to request a cooperative "save then
// exit" after any epoch. A nil func never requests a stop.
type ShouldStopFunc func() bool

// Train runs up to MaxEpochs of mini-batch-free stochastic
// backpropagation over samples, in sequence. The training set itself is
// the caller's to discard once Train returns.
func Train(net *Network, samples []TrainingSample, checkpoint CheckpointFunc, shouldStop ShouldStopFunc) error {
	for epoch := 0; epoch < MaxEpochs; epoch++ {
		deltaSum := 0.0

		for _, sample := range samples {
			deltaSum += trainOne(net, sample)
		}

		needsCheckpoint := (epoch+1)%CheckpointEveryEpochs == 0 || deltaSum < DeltaConvergenceThreshold
		if needsCheckpoint && checkpoint != nil {
			if err := checkpoint(net, epoch); err != nil {
				return err
			}
		}

		if shouldStop != nil && shouldStop() {
			return nil
		}
	}

	return nil
}

// trainOne runs one forward pass and one backpropagation update for a
// single sample, returning the summed |δ| across every neuron for
// convergence tracking.
func trainOne(net *Network, sample TrainingSample) float64 {
	outputs := net.forwardAll(sample.Input)
	deltas := make([][]float64, len(net.Layers))

	outputLayerIdx := len(net.Layers) - 1
	outputLayer := outputs[outputLayerIdx+1]
	target := make([]float64, len(outputLayer))
	target[sample.Expected] = 1.0

	deltaSum := 0.0

	// Output layer delta: (target - output) * σ'(output).
	deltas[outputLayerIdx] = make([]float64, len(outputLayer))
	for i, out := range outputLayer {
		d := (target[i] - out) * sigmoidPrimeFromOutput(out)
		deltas[outputLayerIdx][i] = d
		deltaSum += abs(d)
	}

	// Hidden layers, walking backward.
	for li := outputLayerIdx - 1; li >= 0; li-- {
		layerOutputs := outputs[li+1]
		nextLayer := net.Layers[li+1]
		nextDeltas := deltas[li+1]

		deltas[li] = make([]float64, len(layerOutputs))
		for ni := range layerOutputs {
			sum := 0.0
			for k, neuron := range nextLayer.Neurons {
				sum += nextDeltas[k] * neuron.Weights[ni]
			}
			d := sum * sigmoidPrimeFromOutput(layerOutputs[ni])
			deltas[li][ni] = d
			deltaSum += abs(d)
		}
	}

	// Weight update: w += η * δ * input. Bias uses input term ≡ 1.
	for li, layer := range net.Layers {
		prevOutput := outputs[li]
		for ni := range layer.Neurons {
			neuron := &layer.Neurons[ni]
			d := deltas[li][ni]
			for wi := 0; wi < neuron.Len-1; wi++ {
				neuron.Weights[wi] += LearningRate * d * prevOutput[wi]
			}
			neuron.Weights[neuron.Len-1] += LearningRate * d * 1.0
		}
	}

	return deltaSum
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
