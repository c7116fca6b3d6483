package wav

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodePCM16_Header(t *testing.T) {
	samples := [][]float64{make([]float64, 100), make([]float64, 100)}
	b := EncodePCM16(samples, 44100)

	if len(b) != HeaderSize+100*2*2 {
		t.Fatalf("unexpected buffer size %d", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[36:40]) != "data" {
		t.Fatalf("bad magic fields: %q %q %q", b[0:4], b[8:12], b[36:40])
	}
	if got := binary.LittleEndian.Uint16(b[20:22]); got != 1 {
		t.Fatalf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(b[22:24]); got != 2 {
		t.Fatalf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(b[24:28]); got != 44100 {
		t.Fatalf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:32]); got != 44100*2*2 {
		t.Fatalf("byte rate = %d, want %d", got, 44100*2*2)
	}
	if got := binary.LittleEndian.Uint16(b[32:34]); got != 4 {
		t.Fatalf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint16(b[34:36]); got != 16 {
		t.Fatalf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != 100*2*2 {
		t.Fatalf("data size = %d, want %d", got, 100*2*2)
	}
}

func TestQuantize_ClampAndScale(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{-2.0, -32768},
		{-1.0, -32768},
		{0, 0},
		{1.0, 32767},
		{2.0, 32767},
		{0.5, 16383}, // truncated, not rounded
		{-0.5, -16384},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Fatalf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeDecode_SineRoundTrip(t *testing.T) {
	const rate = 16000
	const frames = 1600
	src := make([]float64, frames)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 440 * float64(i) / rate)
	}

	encoded := EncodePCM16([][]float64{src}, rate)
	decoded, err := DecodePCM16(encoded[HeaderSize:], 1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || len(decoded[0]) != frames {
		t.Fatalf("unexpected decode shape: %d channels, %d frames", len(decoded), len(decoded[0]))
	}

	const maxErr = 1.0 / 32767.0
	for i, v := range decoded[0] {
		if diff := math.Abs(v - src[i]); diff > maxErr {
			t.Fatalf("sample %d off by %v (got %v, want %v)", i, diff, v, src[i])
		}
	}
}

func TestDecodePCM16_Interleave(t *testing.T) {
	// two frames of stereo: L=16384, R=-16384
	data := make([]byte, 8)
	left, right := int16(16384), int16(-16384)
	binary.LittleEndian.PutUint16(data[0:], uint16(left))
	binary.LittleEndian.PutUint16(data[2:], uint16(right))
	binary.LittleEndian.PutUint16(data[4:], uint16(left))
	binary.LittleEndian.PutUint16(data[6:], uint16(right))

	got, err := DecodePCM16(data, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := 0; i < 2; i++ {
		if got[0][i] != 0.5 {
			t.Fatalf("left[%d] = %v, want 0.5", i, got[0][i])
		}
		if got[1][i] != -0.5 {
			t.Fatalf("right[%d] = %v, want -0.5", i, got[1][i])
		}
	}
}

func TestDecodePCM16_MalformedLength(t *testing.T) {
	if _, err := DecodePCM16(make([]byte, 5), 2); err == nil {
		t.Fatal("expected error for ragged pcm length")
	}
}
