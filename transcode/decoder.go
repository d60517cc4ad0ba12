package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-enhance/logging"
	"github.com/go-audio/wav"
)

var (
	// ErrInvalidWav is returned when a file is not a readable RIFF/WAVE stream.
	ErrInvalidWav = errors.New("transcode: not a valid wav file")
	// ErrUnsupportedBitDepth is returned for sample formats other than 8/16/24/32-bit PCM.
	ErrUnsupportedBitDepth = errors.New("transcode: unsupported bit depth")
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM              []float64     `json:"-"` // mono samples in [-1, 1)
	SampleRate       int           `json:"sample_rate"`
	Channels         int           `json:"channels"`
	SourceSampleRate int           `json:"source_sample_rate"`
	SourceChannels   int           `json:"source_channels"`
	BitDepth         int           `json:"bit_depth"`
	Duration         time.Duration `json:"duration"`
	Path             string        `json:"path,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// TargetSampleRate is the output rate; 0 keeps the file's native rate.
	TargetSampleRate int `json:"target_sample_rate"`
	// Mono averages all channels into one.
	Mono bool `json:"mono"`
}

// DefaultDecoderConfig returns 16 kHz mono decoding.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 16000,
		Mono:             true,
	}
}

// Decoder reads WAV files into normalized float64 PCM.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// NewDecoderForRate creates a mono decoder resampling to sampleRate.
func NewDecoderForRate(sampleRate int) *Decoder {
	return NewDecoder(&DecoderConfig{TargetSampleRate: sampleRate, Mono: true})
}

// DecodeFile decodes the WAV file at filename.
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := d.Decode(f)
	if err != nil {
		logger.Error(err, "Failed to decode wav file")
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	data.Path = filename

	logger.Debug("Audio file decoded", logging.Fields{
		"source_sample_rate": data.SourceSampleRate,
		"source_channels":    data.SourceChannels,
		"samples":            len(data.PCM),
		"duration":           data.Duration.Seconds(),
	})

	return data, nil
}

// Decode reads a WAV stream from r.
func (d *Decoder) Decode(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, ErrInvalidWav
	}

	bitDepth := int(dec.BitDepth)
	scale, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	sourceRate := buf.Format.SampleRate

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned with a 128 midpoint
			v -= 128
		}
		samples[i] = float64(v) / scale
	}

	outChannels := channels
	if d.config.Mono && channels > 1 {
		samples = DownmixToMono(samples, channels)
		outChannels = 1
	}

	outRate := sourceRate
	if d.config.TargetSampleRate > 0 && d.config.TargetSampleRate != sourceRate {
		if outChannels != 1 {
			return nil, fmt.Errorf("transcode: resampling requires mono output, have %d channels", outChannels)
		}
		samples, err = Resample(samples, sourceRate, d.config.TargetSampleRate)
		if err != nil {
			return nil, err
		}
		outRate = d.config.TargetSampleRate
	}

	data := &AudioData{
		PCM:              samples,
		SampleRate:       outRate,
		Channels:         outChannels,
		SourceSampleRate: sourceRate,
		SourceChannels:   channels,
		BitDepth:         bitDepth,
	}
	if outRate > 0 {
		frames := len(samples) / outChannels
		data.Duration = time.Duration(frames) * time.Second / time.Duration(outRate)
	}

	return data, nil
}

// LoadWav loads path as mono audio at sampleRate.
func LoadWav(path string, sampleRate int) ([]float64, error) {
	data, err := NewDecoderForRate(sampleRate).DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return data.PCM, nil
}

func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return 128, nil
	case 16:
		return 32768, nil
	case 24:
		return 8388608, nil
	case 32:
		return 2147483648, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

// DownmixToMono averages interleaved frames of the given channel count.
func DownmixToMono(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
