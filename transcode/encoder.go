package transcode

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncoderConfig controls WAV output.
type EncoderConfig struct {
	SampleRate int `json:"sample_rate"`
	BitDepth   int `json:"bit_depth"`
	Channels   int `json:"channels"`
}

// DefaultEncoderConfig returns 16 kHz 16-bit mono output.
func DefaultEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		SampleRate: 16000,
		BitDepth:   16,
		Channels:   1,
	}
}

// Encoder writes float64 PCM as integer PCM WAV files.
type Encoder struct {
	config *EncoderConfig
}

// NewEncoder creates a WAV encoder; nil selects the defaults.
func NewEncoder(config *EncoderConfig) *Encoder {
	if config == nil {
		config = DefaultEncoderConfig()
	}
	return &Encoder{config: config}
}

// Encode writes samples (interleaved when Channels > 1) to w. Values are
// clipped to [-1, 1].
func (e *Encoder) Encode(w io.WriteSeeker, samples []float64) error {
	scale, err := fullScale(e.config.BitDepth)
	if err != nil {
		return err
	}
	if e.config.SampleRate <= 0 {
		return ErrInvalidRate
	}
	channels := max(e.config.Channels, 1)

	maxValue := scale - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		v := math.Round(s * scale)
		v = math.Max(-scale, math.Min(maxValue, v))
		if e.config.BitDepth == 8 {
			v += 128
		}
		data[i] = int(v)
	}

	enc := wav.NewEncoder(w, e.config.SampleRate, e.config.BitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: e.config.SampleRate},
		Data:           data,
		SourceBitDepth: e.config.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	return enc.Close()
}

// EncodeFile creates (or truncates) filename and writes samples to it.
func (e *Encoder) EncodeFile(filename string, samples []float64) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := e.Encode(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return f.Close()
}

// SaveWav writes mono samples to path at sampleRate with 16-bit depth.
func SaveWav(path string, samples []float64, sampleRate int) error {
	return NewEncoder(&EncoderConfig{SampleRate: sampleRate, BitDepth: 16, Channels: 1}).EncodeFile(path, samples)
}
