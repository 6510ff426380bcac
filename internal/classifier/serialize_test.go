package classifier

import (
	"bytes"
	"testing"
)

func TestSaveLoadArtifactRoundTrip(t *testing.T) {
	rng := NewSeededRNG(1)
	net := NewNetwork(16, rng, true)

	samples := []TrainingSample{
		{Input: make([]float64, 16), Expected: 3},
		{Input: make([]float64, 16), Expected: 7},
	}
	for i := range samples[0].Input {
		samples[0].Input[i] = float64(i) / 16.0
	}
	for i := range samples[1].Input {
		samples[1].Input[i] = 1.0 - float64(i)/16.0
	}

	choices := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	var buf bytes.Buffer
	if err := SaveArtifact(&buf, samples, net, choices); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}

	loaded, err := LoadArtifact(&buf)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}

	if len(loaded.Samples) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(loaded.Samples), len(samples))
	}
	for i, s := range samples {
		if loaded.Samples[i].Expected != s.Expected {
			t.Errorf("sample %d label = %d, want %d", i, loaded.Samples[i].Expected, s.Expected)
		}
		if len(loaded.Samples[i].Input) != len(s.Input) {
			t.Fatalf("sample %d input length mismatch", i)
		}
		for j := range s.Input {
			if loaded.Samples[i].Input[j] != float64(float32(s.Input[j])) {
				t.Errorf("sample %d input[%d] = %v, want %v", i, j, loaded.Samples[i].Input[j], s.Input[j])
			}
		}
	}

	if len(loaded.LabelChoices) != len(choices) {
		t.Fatalf("label choice count = %d, want %d", len(loaded.LabelChoices), len(choices))
	}
	for i, c := range choices {
		if loaded.LabelChoices[i] != c {
			t.Errorf("label choice %d = %d, want %d", i, loaded.LabelChoices[i], c)
		}
	}

	probe := make([]float64, 16)
	for i := range probe {
		probe[i] = 0.5
	}
	wantOutput := net.Run(probe)
	gotOutput := loaded.Net.Run(probe)
	if gotOutput != wantOutput {
		t.Errorf("Run after reload = %d, want %d (bit-equal weights should give identical inference)", gotOutput, wantOutput)
	}

	for li, layer := range net.Layers {
		for ni, neuron := range layer.Neurons {
			loadedNeuron := loaded.Net.Layers[li].Neurons[ni]
			if loadedNeuron.Len != neuron.Len {
				t.Fatalf("layer %d neuron %d Len = %d, want %d", li, ni, loadedNeuron.Len, neuron.Len)
			}
			for wi := 0; wi < neuron.Len; wi++ {
				want := float64(float32(neuron.Weights[wi]))
				if loadedNeuron.Weights[wi] != want {
					t.Errorf("layer %d neuron %d weight %d = %v, want %v", li, ni, wi, loadedNeuron.Weights[wi], want)
				}
			}
		}
	}
}

func TestLoadArtifactRejectsTruncatedData(t *testing.T) {
	rng := NewSeededRNG(2)
	net := NewNetwork(8, rng, false)

	var buf bytes.Buffer
	if err := SaveArtifact(&buf, nil, net, []byte{1, 2, 3}); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-5]
	if _, err := LoadArtifact(bytes.NewReader(truncated)); err == nil {
		t.Fatal("LoadArtifact on truncated data: got nil error, want a failure")
	}
}
