// Package wav serializes decoded multi-channel float audio into an
// uncompressed 16-bit PCM RIFF/WAVE container and back.
package wav

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the canonical PCM16 WAV header.
const HeaderSize = 44

// EncodePCM16 wraps per-channel float samples in [-1, 1] into a PCM16 WAV
// byte buffer: 44-byte little-endian header followed by interleaved int16
// samples. All channels must have the same length.
func EncodePCM16(channels [][]float64, sampleRate int) []byte {
	numCh := len(channels)
	frames := 0
	if numCh > 0 {
		frames = len(channels[0])
	}
	dataSize := frames * numCh * 2
	buf := make([]byte, HeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(numCh))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*numCh*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(numCh*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	off := HeaderSize
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			binary.LittleEndian.PutUint16(buf[off:], uint16(quantize(ch[i])))
			off += 2
		}
	}
	return buf
}

// quantize maps a float sample to int16. Input is clamped to [-1, 1]; the
// negative and non-negative halves use different scale factors so both
// endpoints land inside the int16 range. The result is truncated, not
// rounded.
func quantize(v float64) int16 {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}

// DecodePCM16 de-interleaves raw little-endian int16 samples (no container
// header) into per-channel floats scaled by 1/32768. The byte length must be
// a whole number of frames.
func DecodePCM16(data []byte, numCh int) ([][]float64, error) {
	if numCh <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", numCh)
	}
	frameSize := numCh * 2
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(data), frameSize)
	}
	frames := len(data) / frameSize
	out := make([][]float64, numCh)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < numCh; c++ {
			s := int16(binary.LittleEndian.Uint16(data[(i*numCh+c)*2:]))
			out[c][i] = float64(s) / 32768.0
		}
	}
	return out, nil
}
