// Package whispercpp runs a local whisper.cpp binary as an offline
// alternative to the hosted transcription capability.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/forPelevin/transub/internal/domain/transcript"
	"github.com/forPelevin/transub/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// TranscribeChunk writes the chunk to a temp WAV file, runs whisper.cpp
// with JSON output, and reconciles the result onto the recording timeline
// at offsetSec.
func (a *Adapter) TranscribeChunk(ctx context.Context, audio []byte, mimeType string, offsetSec float64) ([]types.Segment, error) {
	if mimeType != "audio/wav" {
		return nil, fmt.Errorf("%w: whisper.cpp only accepts audio/wav, got %q", types.ErrTranscription, mimeType)
	}

	dir, err := os.MkdirTemp("", "transub-whisper-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "chunk.wav")
	if err := os.WriteFile(wavPath, audio, 0o644); err != nil {
		return nil, err
	}
	outPrefix := filepath.Join(dir, "chunk")

	cmd := exec.CommandContext(ctx, a.bin,
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: read whisper output: %v", types.ErrTranscription, err)
	}

	var out struct {
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(jb, &out); err != nil {
		return nil, fmt.Errorf("%w: decode whisper output: %v", types.ErrTranscription, err)
	}

	raw := make([]transcript.RawSegment, 0, len(out.Segments))
	for _, s := range out.Segments {
		raw = append(raw, transcript.RawSegment{StartSec: s.Start, EndSec: s.End, Text: s.Text})
	}
	return transcript.Reconcile(raw, offsetSec)
}
