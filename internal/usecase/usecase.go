package usecase

import (
	"context"
	"fmt"

	"github.com/forPelevin/transub/internal/domain/chunk"
	"github.com/forPelevin/transub/internal/domain/srt"
	"github.com/forPelevin/transub/internal/domain/wav"
	"github.com/forPelevin/transub/internal/ports"
	"github.com/forPelevin/transub/internal/progress"
	"github.com/forPelevin/transub/internal/types"
)

// SynthesisSampleRate is the fixed output rate of the speech synthesis
// capability: raw PCM16 mono at 24 kHz.
const SynthesisSampleRate = 24000

type Deps struct {
	Audio ports.AudioDecoder
	ASR   ports.Transcriber
	MT    ports.Translator
	TTS   ports.Synthesizer
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type TranscribeInput struct {
	Path       string
	ChunkSec   float64
	SampleRate int
	Channels   int
	Logf       func(format string, args ...any)
	OnProgress func(done, total int)
}

// TranscribeFile decodes an audio file, splits it into bounded-duration
// chunks, transcribes each chunk in order, and reassembles the results into
// one globally time-consistent transcript. Chunks are processed strictly in
// sequence; cancellation is checked at chunk boundaries only, and a failed
// chunk discards the whole operation's result.
func (u Usecase) TranscribeFile(ctx context.Context, in TranscribeInput) (types.Transcript, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	rate := in.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	channels := in.Channels
	if channels <= 0 {
		channels = 1
	}

	samples, err := u.d.Audio.DecodePCM16(ctx, in.Path, rate, channels)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}
	buf := chunk.Buffer{SampleRate: rate, Channels: samples}
	total := buf.DurationSec()
	logf("decoded %.1fs of audio (%d Hz, %d channel(s))", total, rate, channels)

	var spans []chunk.Span
	if in.ChunkSec <= 0 || total <= in.ChunkSec {
		// a recording at or under the chunk length goes up whole
		spans = []chunk.Span{{OffsetSec: 0, DurationSec: total}}
	} else {
		spans = chunk.Plan(total, in.ChunkSec)
	}
	prog := progress.New(len(spans), in.OnProgress)

	var segments []types.Segment
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return types.Transcript{}, err
		}
		sub := buf
		if len(spans) > 1 {
			sub = chunk.Extract(buf, span)
		}
		encoded := wav.EncodePCM16(sub.Channels, sub.SampleRate)
		logf("transcribing chunk %d/%d (offset %.1fs, %.1fs)", i+1, len(spans), span.OffsetSec, span.DurationSec)
		segs, err := u.d.ASR.TranscribeChunk(ctx, encoded, "audio/wav", span.OffsetSec)
		if err != nil {
			return types.Transcript{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(spans), err)
		}
		segments = append(segments, segs...)
		prog.Step()
	}
	return types.Transcript{Segments: segments}, nil
}

// TranslateTexts translates texts in consecutive batches of at most
// batchSize, strictly in sequence so progress reflects real completion.
// Each batch's response must contain exactly one output per input; a count
// mismatch fails the whole operation rather than padding or truncating.
func (u Usecase) TranslateTexts(ctx context.Context, texts []string, targetLang string, batchSize int, onProgress func(done, total int)) ([]string, error) {
	if batchSize <= 0 {
		batchSize = 20
	}
	prog := progress.New((len(texts)+batchSize-1)/batchSize, onProgress)
	out := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		got, err := u.d.MT.TranslateBatch(ctx, batch, targetLang)
		if err != nil {
			return nil, fmt.Errorf("translate batch %d-%d: %w", start, end-1, err)
		}
		if len(got) != len(batch) {
			return nil, &types.CardinalityMismatchError{Expected: len(batch), Actual: len(got)}
		}
		out = append(out, got...)
		prog.Step()
	}
	return out, nil
}

// TranslateTranscript replaces every segment's text with its translation,
// leaving timestamps, order, and length untouched.
func (u Usecase) TranslateTranscript(ctx context.Context, tr types.Transcript, targetLang string, batchSize int, onProgress func(done, total int)) (types.Transcript, error) {
	translated, err := u.TranslateTexts(ctx, tr.Texts(), targetLang, batchSize, onProgress)
	if err != nil {
		return types.Transcript{}, err
	}
	return tr.WithTexts(translated)
}

// TranslateSubtitle parses a subtitle document, translates its text lines,
// and reconstructs the document with original indices and timing lines.
func (u Usecase) TranslateSubtitle(ctx context.Context, doc, targetLang string, batchSize int, onProgress func(done, total int)) (string, error) {
	records := srt.Parse(doc)
	if len(records) == 0 {
		return "", types.ErrSubtitleParse
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	translated, err := u.TranslateTexts(ctx, texts, targetLang, batchSize, onProgress)
	if err != nil {
		return "", err
	}
	return srt.Reconstruct(records, translated), nil
}

// Speak synthesizes text to speech and returns a playable WAV buffer.
func (u Usecase) Speak(ctx context.Context, text string) ([]byte, error) {
	pcm, err := u.d.TTS.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	samples, err := wav.DecodePCM16(pcm, 1)
	if err != nil {
		return nil, fmt.Errorf("synthesized audio: %w", err)
	}
	return wav.EncodePCM16(samples, SynthesisSampleRate), nil
}
