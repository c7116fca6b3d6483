// Package ffmpeg shells out to ffmpeg/ffprobe for audio decoding and
// microphone capture.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/forPelevin/transub/internal/domain/wav"
	"github.com/forPelevin/transub/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string

	// capture input, platform dependent; overridable for unusual setups
	captureFormat string
	captureDevice string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	format, device := defaultCaptureInput()
	return &Adapter{
		ffmpeg:        ffmpegPath,
		ffprobe:       ffprobePath,
		captureFormat: format,
		captureDevice: device,
	}
}

// WithCaptureInput overrides the capture input format and device.
func (a *Adapter) WithCaptureInput(format, device string) *Adapter {
	if format != "" {
		a.captureFormat = format
	}
	if device != "" {
		a.captureDevice = device
	}
	return a
}

func defaultCaptureInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// ProbeDuration returns the container duration in seconds.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// DecodePCM16 decodes any container ffmpeg understands into per-channel
// floats at the requested rate and channel count.
func (a *Adapter) DecodePCM16(ctx context.Context, path string, sampleRate, channels int) ([][]float64, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-v", "error",
		"-i", path,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"pipe:1",
	)
	var out bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg decode: %v\n%s", types.ErrDecode, err, errBuf.String())
	}
	return wav.DecodePCM16(out.Bytes(), channels)
}

// Capture opens the default microphone as a raw PCM16 mono 16 kHz stream.
// Closing the returned reader stops the capture process.
func (a *Adapter) Capture(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-v", "error",
		"-f", a.captureFormat,
		"-i", a.captureDevice,
		"-ac", "1",
		"-ar", "16000",
		"-f", "s16le",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start capture: %v", types.ErrDeviceAccess, err)
	}
	return &captureStream{cmd: cmd, out: stdout}, nil
}

type captureStream struct {
	cmd *exec.Cmd
	out io.ReadCloser
}

func (c *captureStream) Read(p []byte) (int, error) { return c.out.Read(p) }

func (c *captureStream) Close() error {
	c.out.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	return c.cmd.Wait()
}
