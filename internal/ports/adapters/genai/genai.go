// Package genai adapts the generative-language HTTP API to the transcriber,
// translator, and synthesizer ports.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/transub/internal/domain/transcript"
	"github.com/forPelevin/transub/internal/types"
)

type Adapter struct {
	key             string
	transcribeModel string
	translateModel  string
	speechModel     string
	baseURL         string
	client          *http.Client
}

const requestTimeout = 120 * time.Second

const transcribeInstruction = "Transcribe this audio. Return a JSON array of segments " +
	"with startTime and endTime in seconds (millisecond precision) and the spoken text. " +
	"Return strictly valid JSON matching the provided schema, no markdown."

func New(apiKey, transcribeModel, translateModel, speechModel, baseURL string) *Adapter {
	if transcribeModel == "" {
		transcribeModel = "gemini-2.5-flash"
	}
	if translateModel == "" {
		translateModel = "gemini-2.5-flash"
	}
	if speechModel == "" {
		speechModel = "gemini-2.5-flash-preview-tts"
	}
	return &Adapter{
		key:             apiKey,
		transcribeModel: transcribeModel,
		translateModel:  translateModel,
		speechModel:     speechModel,
		baseURL:         normalizeBaseURL(baseURL),
		client:          &http.Client{Timeout: 5 * time.Minute},
	}
}

// TranscribeChunk submits one chunk of encoded audio with a strict output
// schema and reconciles the returned segments onto the recording timeline
// at offsetSec.
func (a *Adapter) TranscribeChunk(ctx context.Context, audio []byte, mimeType string, offsetSec float64) ([]types.Segment, error) {
	segmentSchema := map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"startTime": map[string]any{"type": "NUMBER"},
				"endTime":   map[string]any{"type": "NUMBER"},
				"text":      map[string]any{"type": "STRING"},
			},
			"required": []string{"startTime", "endTime", "text"},
		},
	}
	payload := map[string]any{
		"contents": []map[string]any{{
			"role": "user",
			"parts": []map[string]any{
				{"text": transcribeInstruction},
				{"inlineData": map[string]any{
					"mimeType": mimeType,
					"data":     base64.StdEncoding.EncodeToString(audio),
				}},
			},
		}},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   segmentSchema,
		},
	}

	text, err := a.generate(ctx, a.transcribeModel, payload)
	if err != nil {
		// a canceled caller context unwinds as cancellation, not as a
		// transcription failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", types.ErrTranscription, err)
	}
	clean, err := extractJSONArray(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTranscription, err)
	}
	var raw []transcript.RawSegment
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("%w: decode segments: %v", types.ErrTranscription, err)
	}
	return transcript.Reconcile(raw, offsetSec)
}

// TranslateBatch translates texts into targetLang, requesting a plain JSON
// string array of the same shape. Cardinality is enforced by the caller.
func (a *Adapter) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	src, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("marshal source texts: %w", err)
	}
	prompt := fmt.Sprintf(
		"Translate every string in the following JSON array into %s. "+
			"Return a JSON array of the translated strings with exactly the same "+
			"number of elements, in the same order. No markdown.\n\n%s",
		targetLang, src)

	payload := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]any{{"text": prompt}},
		}},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema": map[string]any{
				"type":  "ARRAY",
				"items": map[string]any{"type": "STRING"},
			},
		},
	}

	text, err := a.generate(ctx, a.translateModel, payload)
	if err != nil {
		return nil, err
	}
	clean, err := extractJSONArray(text)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}
	return out, nil
}

// Synthesize renders text to speech. The service returns base64 raw PCM16
// mono at 24000 Hz.
func (a *Adapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]any{{"text": text}},
		}},
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
		},
	}

	data, err := a.generateInline(ctx, a.speechModel, payload)
	if err != nil {
		return nil, err
	}
	pcm, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode synthesized audio: %w", err)
	}
	return pcm, nil
}

// generate posts a generateContent payload and returns the first candidate's
// text part.
func (a *Adapter) generate(ctx context.Context, model string, payload map[string]any) (string, error) {
	var resp generateResponse
	if err := a.post(ctx, model, payload, &resp); err != nil {
		return "", err
	}
	for _, part := range resp.firstParts() {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", errors.New("response has no text part")
}

// generateInline is generate for audio-modality responses: it returns the
// first candidate's inline data payload.
func (a *Adapter) generateInline(ctx context.Context, model string, payload map[string]any) (string, error) {
	var resp generateResponse
	if err := a.post(ctx, model, payload, &resp); err != nil {
		return "", err
	}
	for _, part := range resp.firstParts() {
		if part.InlineData.Data != "" {
			return part.InlineData.Data, nil
		}
	}
	return "", errors.New("response has no inline data part")
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []responsePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type responsePart struct {
	Text       string `json:"text"`
	InlineData struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

func (r generateResponse) firstParts() []responsePart {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content.Parts
}

func (a *Adapter) post(ctx context.Context, model string, payload map[string]any, out *generateResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/v1beta/models/" + model + ":generateContent"

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("genai timeout after %s (model=%s)", requestTimeout, model)
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("genai status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return fmt.Errorf("genai status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// extractJSONArray pulls the first JSON array out of model output,
// tolerating markdown code fences and prose around it.
func extractJSONArray(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "[")
	end := strings.LastIndex(t, "]")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("could not locate JSON array in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)((?:authorization|x-goog-api-key)\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
