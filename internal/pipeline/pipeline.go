// Package pipeline wires adapters to use cases behind a validated Config.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/forPelevin/transub/internal/live"
	"github.com/forPelevin/transub/internal/ports"
	"github.com/forPelevin/transub/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/transub/internal/ports/adapters/genai"
	"github.com/forPelevin/transub/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/transub/internal/types"
	"github.com/forPelevin/transub/internal/usecase"
)

type Config struct {
	APIKey string

	TranscribeModel string
	TranslateModel  string
	SpeechModel     string
	LiveModel       string

	BaseURL      string
	AllowedHosts []string

	ChunkSec  float64
	BatchSize int

	FFmpegPath  string
	FFprobePath string

	// local transcription via whisper.cpp instead of the hosted capability
	LocalASR     bool
	WhisperBin   string
	WhisperModel string

	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.ChunkSec <= 0 {
		return errors.New("chunk duration must be > 0")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be > 0")
	}
	if c.LocalASR {
		if c.WhisperBin == "" || c.WhisperModel == "" {
			return errors.New("local transcription requires whisper binary and model paths")
		}
	} else if c.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required (set it in .env)")
	}
	return genai.ValidateBaseURL(c.BaseURL, c.AllowedHosts)
}

func (c Config) logf() func(format string, args ...any) {
	if c.Logf == nil {
		return func(string, ...any) {}
	}
	return c.Logf
}

func (c Config) transcriber() ports.Transcriber {
	if c.LocalASR {
		return whispercpp.New(c.WhisperBin, c.WhisperModel)
	}
	return c.genai()
}

func (c Config) genai() *genai.Adapter {
	return genai.New(c.APIKey, c.TranscribeModel, c.TranslateModel, c.SpeechModel, c.BaseURL)
}

func (c Config) audio() *ffmpeg.Adapter {
	return ffmpeg.New(c.FFmpegPath, c.FFprobePath)
}

func (c Config) usecase() usecase.Usecase {
	g := c.genai()
	return usecase.New(usecase.Deps{
		Audio: c.audio(),
		ASR:   c.transcriber(),
		MT:    g,
		TTS:   g,
	})
}

// TranscribeFile transcribes an audio file and, when targetLang is set,
// translates the resulting segments. It returns the final transcript and
// its subtitle rendering.
func TranscribeFile(ctx context.Context, cfg Config, inputPath, targetLang string) (types.Transcript, error) {
	logf := cfg.logf()
	uc := cfg.usecase()

	if dur, err := cfg.audio().ProbeDuration(ctx, inputPath); err == nil {
		logf("input duration: %.1fs", dur)
	}

	tr, err := uc.TranscribeFile(ctx, usecase.TranscribeInput{
		Path:       inputPath,
		ChunkSec:   cfg.ChunkSec,
		Logf:       logf,
		OnProgress: progressLogger(logf, "transcription"),
	})
	if err != nil {
		return types.Transcript{}, err
	}
	logf("transcribed %d segment(s)", len(tr.Segments))

	if targetLang == "" {
		return tr, nil
	}
	translated, err := uc.TranslateTranscript(ctx, tr, targetLang, cfg.BatchSize, progressLogger(logf, "translation"))
	if err != nil {
		return types.Transcript{}, err
	}
	return translated, nil
}

// TranslateSubtitle translates a whole subtitle document, bypassing
// transcription entirely.
func TranslateSubtitle(ctx context.Context, cfg Config, doc, targetLang string) (string, error) {
	return cfg.usecase().TranslateSubtitle(ctx, doc, targetLang, cfg.BatchSize, progressLogger(cfg.logf(), "translation"))
}

// Speak synthesizes text into a playable WAV buffer.
func Speak(ctx context.Context, cfg Config, text string) ([]byte, error) {
	return cfg.usecase().Speak(ctx, text)
}

// Live captures the microphone into a live transcription session until ctx
// is canceled, then returns the finalized transcript.
func Live(ctx context.Context, cfg Config) (types.Transcript, error) {
	logf := cfg.logf()
	sessionID := uuid.NewString()
	logf("live session %s starting", sessionID)

	dialer := genai.NewLiveDialer(cfg.APIKey, cfg.LiveModel, cfg.BaseURL)
	tr, err := live.Capture(ctx, cfg.audio(), dialer, logf)
	if err != nil {
		logf("live session %s ended with error: %v", sessionID, err)
		return tr, err
	}
	logf("live session %s finalized %d segment(s)", sessionID, len(tr.Segments))
	return tr, nil
}

// progressLogger reports step completion through the pipeline log.
func progressLogger(logf func(format string, args ...any), stage string) func(done, total int) {
	return func(done, total int) {
		logf("%s progress: %d/%d", stage, done, total)
	}
}

// ensure adapters implement ports
var _ ports.Transcriber = (*genai.Adapter)(nil)
var _ ports.Translator = (*genai.Adapter)(nil)
var _ ports.Synthesizer = (*genai.Adapter)(nil)
var _ ports.LiveDialer = (*genai.LiveDialer)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.AudioDecoder = (*ffmpeg.Adapter)(nil)
var _ ports.AudioCapture = (*ffmpeg.Adapter)(nil)
