package irstore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-wav"
)

// WavReader reads the first channel of a PCM WAV file as float samples in
// [-1, 1).
type WavReader struct{}

// Read implements [AudioReader].
func (WavReader) Read(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	reader := wav.NewReader(f)
	format, err := reader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("reading wav header: %w", err)
	}
	if format.NumChannels == 0 {
		return nil, 0, fmt.Errorf("wav file has no channels")
	}

	var out []float64
	for {
		samples, err := reader.ReadSamples()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading wav samples: %w", err)
		}
		for _, sample := range samples {
			out = append(out, reader.FloatValue(sample, 0))
		}
	}
	return out, int(format.SampleRate), nil
}
