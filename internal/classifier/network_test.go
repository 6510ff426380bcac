package classifier

import (
	"math"
	"testing"
)

func TestSigmoidRange(t *testing.T) {
	cases := []float64{-100, -1, 0, 1, 100}
	for _, z := range cases {
		s := sigmoid(z)
		if s < 0 || s > 1 {
			t.Errorf("sigmoid(%v) = %v, want value in [0,1]", z, s)
		}
	}
	if got := sigmoid(0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("sigmoid(0) = %v, want 0.5", got)
	}
}

func TestNewNetworkTopology(t *testing.T) {
	rng := NewSeededRNG(42)
	net := NewNetwork(16, rng, false)

	if len(net.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(net.Layers))
	}
	if got := len(net.Layers[0].Neurons); got != 8 {
		t.Errorf("hidden layer size = %d, want 8 (inputSize/2)", got)
	}
	if got := len(net.Layers[1].Neurons); got != NumDigitClasses {
		t.Errorf("output layer size = %d, want %d", got, NumDigitClasses)
	}
	for _, neuron := range net.Layers[0].Neurons {
		if neuron.Len != 17 {
			t.Errorf("hidden neuron Len = %d, want 17 (inputSize+1 bias)", neuron.Len)
		}
	}
}

func TestNewNetworkPadsWeightsWhenRequested(t *testing.T) {
	rng := NewSeededRNG(7)
	net := NewNetwork(16, rng, true)

	for _, neuron := range net.Layers[0].Neurons {
		if len(neuron.Weights)%8 != 0 {
			t.Errorf("padded neuron weight storage length = %d, want multiple of 8", len(neuron.Weights))
		}
		if neuron.Len != 17 {
			t.Errorf("logical Len changed by padding: got %d, want 17", neuron.Len)
		}
	}
}

func TestForwardAllIsDeterministic(t *testing.T) {
	rng := NewSeededRNG(99)
	net := NewNetwork(8, rng, false)

	input := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

	first := net.Run(input)
	for i := 0; i < 20; i++ {
		if got := net.Run(input); got != first {
			t.Fatalf("Run returned %d on repeat %d, want %d (fixed summation order must give deterministic output)", got, i, first)
		}
	}
}

func TestRunPicksArgMaxOutput(t *testing.T) {
	rng := NewSeededRNG(3)
	net := NewNetwork(4, rng, false)

	// Force the output layer so one neuron is unambiguously dominant.
	for i := range net.Layers[1].Neurons {
		w := net.Layers[1].Neurons[i].Weights
		for j := range w {
			w[j] = -10
		}
	}
	dominant := 5
	dw := net.Layers[1].Neurons[dominant].Weights
	for j := range dw {
		dw[j] = 10
	}

	got := net.Run([]float64{1, 1, 1, 1})
	if got != byte(dominant) {
		t.Errorf("Run() = %d, want %d (dominant output neuron)", got, dominant)
	}
}
