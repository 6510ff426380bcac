package classifier

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
)

// ArtifactFilename is the conventional path (process working directory)
// for the persisted classifier artifact.
const ArtifactFilename = "training.bin.dat"

// SaveArtifact writes the little-endian binary training artifact:
// the training samples, a reserved zero test-sample count,
// every layer's neuron weights, and the label-choice bytes.
func SaveArtifact(w io.Writer, samples []TrainingSample, net *Network, labelChoices []byte) error {
	if err := writeU32(w, uint32(len(samples))); err != nil {
		return err
	}
	for _, s := range samples {
		if err := writeU32(w, uint32(s.Expected)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(len(s.Input))); err != nil {
			return err
		}
		for _, v := range s.Input {
			if err := writeF32(w, v); err != nil {
				return err
			}
		}
	}

	if err := writeU32(w, 0); err != nil { // N_test, reserved
		return err
	}

	if err := writeU32(w, uint32(len(net.Layers))); err != nil {
		return err
	}
	for _, layer := range net.Layers {
		if err := writeU32(w, uint32(len(layer.Neurons))); err != nil {
			return err
		}
		for _, neuron := range layer.Neurons {
			if err := writeU32(w, uint32(neuron.Len)); err != nil {
				return err
			}
			for i := 0; i < neuron.Len; i++ {
				if err := writeF32(w, neuron.Weights[i]); err != nil {
					return err
				}
			}
		}
	}

	if err := writeU32(w, uint32(len(labelChoices))); err != nil {
		return err
	}
	if _, err := w.Write(labelChoices); err != nil {
		return fmt.Errorf("write label choices: %w", err)
	}

	return nil
}

// LoadedArtifact is the structurally-validated result of LoadArtifact.
type LoadedArtifact struct {
	Samples      []TrainingSample
	Net          *Network
	LabelChoices []byte
}

// LoadArtifact reads the binary format SaveArtifact writes. A structural
// read failure (truncated file, inconsistent counts) is fatal per
// "Malformed mid-file reads are fatal" — the caller must
// re-train rather than attempt partial recovery.
func LoadArtifact(r io.Reader) (*LoadedArtifact, error) {
	nTrain, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read training sample count: %w", err)
	}

	samples := make([]TrainingSample, nTrain)
	for i := range samples {
		label, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("read sample %d label: %w", i, err)
		}
		inputLen, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("read sample %d input length: %w", i, err)
		}
		input := make([]float64, inputLen)
		for j := range input {
			v, err := readF32(r)
			if err != nil {
				return nil, fmt.Errorf("read sample %d input[%d]: %w", i, j, err)
			}
			input[j] = v
		}
		samples[i] = TrainingSample{Input: input, Expected: byte(label)}
	}

	if _, err := readU32(r); err != nil { // N_test, reserved
		return nil, fmt.Errorf("read reserved test count: %w", err)
	}

	nLayers, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read layer count: %w", err)
	}

	net := &Network{Layers: make([]Layer, nLayers)}
	for li := range net.Layers {
		nNeurons, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("read layer %d neuron count: %w", li, err)
		}
		neurons := make([]Neuron, nNeurons)
		for ni := range neurons {
			nWeights, err := readU32(r)
			if err != nil {
				return nil, fmt.Errorf("read layer %d neuron %d weight count: %w", li, ni, err)
			}
			weights := make([]float64, nWeights)
			for wi := range weights {
				v, err := readF32(r)
				if err != nil {
					return nil, fmt.Errorf("read layer %d neuron %d weight %d: %w", li, ni, wi, err)
				}
				weights[wi] = v
			}
			neurons[ni] = Neuron{Weights: weights, Len: int(nWeights)}
		}
		net.Layers[li] = Layer{Neurons: neurons}
	}
	if len(net.Layers) > 0 {
		net.InputSize = net.Layers[0].Neurons[0].Len - 1
	}

	nChoices, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read label choice count: %w", err)
	}
	choices := make([]byte, nChoices)
	if _, err := io.ReadFull(r, choices); err != nil {
		return nil, fmt.Errorf("read label choices: %w", err)
	}

	return &LoadedArtifact{Samples: samples, Net: net, LabelChoices: choices}, nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeF32(w io.Writer, v float64) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readF32(r io.Reader) (float64, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint32(buf[:])
	return float64(math.Float32frombits(bits)), nil
}

// NewSeededRNG builds a PRNG seeded with seed. The host passes a
// time-derived seed (cmd/sudokuar uses the current time); tests pass a
// fixed seed for determinism.
func NewSeededRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
