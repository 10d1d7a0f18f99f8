// Package media handles the audio formats and playback handles used by
// capture sessions: little-endian PCM16 in, WAV out, and the registry of
// local playback references minted for finished recordings.
package media

import (
	"encoding/binary"
	"math"
)

// DecodePCM converts little-endian 16-bit PCM bytes to float32 samples
// normalized to [-1, 1].
func DecodePCM(data []byte) []float32 {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / math.MaxInt16
	}
	return samples
}

// SamplesToWAV encodes float32 PCM samples as a mono 16-bit WAV byte slice.
func SamplesToWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	totalLen := 44 + dataLen

	buf := make([]byte, totalLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(totalLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		val := int16(clamped * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(val))
	}

	return buf
}

// Resample converts samples from srcRate to dstRate by linear
// interpolation. Speech headed to the transcription backend tolerates the
// aliasing this leaves behind; returns the input unchanged if the rates
// already match.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	out := make([]float32, outLen)

	for i := range outLen {
		srcIdx := float64(i) * ratio
		idx := int(srcIdx)
		if idx+1 >= len(samples) {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(srcIdx - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}

	return out
}
