// Package audio normalizes WAV input into the canonical representation
// both recognition backends require (mono 16 kHz float32), writes the
// sidecar's scratch WAV files, and captures microphone audio.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the only sample rate both recognition backends accept.
// No resampling is performed; callers must supply matching-rate audio.
const SampleRate = 16000

// wavFormatIEEEFloat is the WAVE format tag for 32-bit IEEE float PCM.
const wavFormatIEEEFloat = 3

var (
	// ErrFormat indicates the byte stream is not a parseable WAV container.
	ErrFormat = errors.New("audio: invalid WAV data")
	// ErrSampleRate indicates the container's sample rate is not 16 kHz.
	ErrSampleRate = errors.New("audio: sample rate must be 16000 Hz")
	// ErrChannels indicates a channel count other than mono or stereo.
	ErrChannels = errors.New("audio: unsupported channel count")
)

// DecodeWAV parses a WAV byte buffer into mono float32 samples normalized
// to approximately [-1, 1]. Stereo input is averaged pairwise into mono;
// an odd trailing sample is dropped. NaN and infinite values are clamped
// to 0 so nothing non-finite ever reaches a backend or the scratch writer.
func DecodeWAV(data []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return nil, ErrFormat
	}

	if dec.SampleRate != SampleRate {
		return nil, fmt.Errorf("%w, got %d Hz", ErrSampleRate, dec.SampleRate)
	}

	channels := int(dec.NumChans)
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: decoding samples: %v", ErrFormat, err)
	}

	samples := make([]float32, 0, len(buf.Data))
	if dec.WavAudioFormat == wavFormatIEEEFloat && dec.BitDepth == 32 {
		// The decoder hands IEEE-float frames back as raw little-endian
		// 32-bit words; reinterpret them instead of rescaling.
		for _, v := range buf.Data {
			samples = append(samples, math.Float32frombits(uint32(int32(v))))
		}
	} else {
		fullScale := float32(int(1) << (dec.BitDepth - 1))
		offset := 0
		if dec.BitDepth == 8 {
			// 8-bit WAV is unsigned with a midpoint of 128.
			offset = 128
		}
		for _, v := range buf.Data {
			samples = append(samples, float32(v-offset)/fullScale)
		}
	}

	if channels == 2 {
		mono := make([]float32, 0, len(samples)/2)
		for i := 0; i+1 < len(samples); i += 2 {
			mono = append(mono, (samples[i]+samples[i+1])/2)
		}
		samples = mono
	}

	for i, s := range samples {
		if !isFinite(s) {
			samples[i] = 0
		}
	}

	return samples, nil
}

// EncodeWAV writes mono float32 samples to path as a canonical 16 kHz
// 16-bit signed PCM WAV, the format the sidecar binary consumes. Each
// sample is scaled by 32767 and truncated; out-of-range values saturate.
func EncodeWAV(samples []float32, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if !isFinite(s) {
			s = 0
		}
		v := int(s * 32767)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		buf.Data[i] = v
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("audio: writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audio: finalizing WAV: %w", err)
	}
	return f.Close()
}

func isFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
