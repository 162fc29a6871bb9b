// Package gemini provides a streaming client for the Gemini text-to-speech
// model on the Generative Language API.
//
// The client speaks the REST surface directly: one streamGenerateContent
// call per synthesis request, with audio delivered as base64 inline data in
// server-sent events.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/gemini-tts-cli/internal/core"
)

// API endpoints and defaults.
const (
	// DefaultBaseURL is the Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the Gemini TTS preview model.
	DefaultModel = "gemini-2.5-flash-preview-tts"
	// DefaultTemperature matches the generation temperature the model
	// documentation recommends for speech output.
	DefaultTemperature = 1.0

	apiStreamGenerateFormat = "/v1beta/models/%s:streamGenerateContent?alt=sse"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAPIKey      = "x-goog-api-key"
	contentTypeJSON   = "application/json"
)

// Server-sent event framing.
const (
	sseDataPrefix = "data:"
	// sseMaxLineBytes bounds a single event line; inline audio payloads
	// arrive base64-encoded and can reach several hundred kilobytes.
	sseMaxLineBytes = 8 * 1024 * 1024
)

// Stream format defaults used when the reported mime type omits parameters.
const (
	defaultSampleRate    = 24000
	defaultBitsPerSample = 16
	defaultChannels      = 1

	mimeRateParamPrefix = "rate="
	mimeL16Prefix       = "audio/L"
)

const responseModalityAudio = "AUDIO"

// Static errors.
var (
	// ErrTextEmpty indicates a synthesis request without text.
	ErrTextEmpty = errors.New("text cannot be empty")
	// ErrVoiceEmpty indicates a synthesis request without a voice name.
	ErrVoiceEmpty = errors.New("voice cannot be empty")
	// ErrNoAudioData indicates the stream completed without any audio.
	ErrNoAudioData = errors.New("stream produced no audio data")
	// ErrRemote wraps error details reported by the remote service.
	ErrRemote = errors.New("speech generation failed")
)

// Client calls the Gemini TTS model over HTTP. It implements
// core.Synthesizer.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	log         *logger.Logger
}

// New creates a client for the given endpoint, model, and credential. The
// timeout applies to each synthesis call end to end, including draining the
// stream.
func New(baseURL, model, apiKey string, temperature float64, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		log:         log,
	}
}

// Request and response payloads for the streamGenerateContent call.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature        float64       `json:"temperature"`
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type streamResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content *content `json:"content"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Synthesize performs one streaming generation call and returns the ordered
// audio chunks with their PCM format. The call blocks until the stream is
// drained; a mid-stream failure discards whatever was received and returns
// the error, so partial audio is never surfaced.
func (c *Client) Synthesize(ctx context.Context, req core.SynthesisRequest) (*core.SynthesisResult, error) {
	if req.Text == "" {
		return nil, ErrTextEmpty
	}

	if req.Voice == "" {
		return nil, ErrVoiceEmpty
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call speech service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	return c.drainStream(resp.Body)
}

// buildRequest constructs the streamGenerateContent HTTP request.
func (c *Client) buildRequest(ctx context.Context, req core.SynthesisRequest) (*http.Request, error) {
	payload := generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: req.Text}},
			},
		},
		GenerationConfig: &generationConfig{
			Temperature:        c.temperature,
			ResponseModalities: []string{responseModalityAudio},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{
						VoiceName: req.Voice,
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + fmt.Sprintf(apiStreamGenerateFormat, c.model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAPIKey, c.apiKey)

	return httpReq, nil
}

// drainStream consumes the SSE body, decoding inline audio from each event.
func (c *Client) drainStream(body io.Reader) (*core.SynthesisResult, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), sseMaxLineBytes)

	result := &core.SynthesisResult{
		Chunks: nil,
		Format: core.PCMFormat{
			SampleRate:    defaultSampleRate,
			BitsPerSample: defaultBitsPerSample,
			Channels:      defaultChannels,
		},
	}

	totalBytes := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if payload == "" {
			continue
		}

		chunk, mimeType, err := decodeEvent(payload)
		if err != nil {
			return nil, err
		}

		if len(chunk) == 0 {
			continue
		}

		if mimeType != "" {
			result.Format = ParseAudioMimeType(mimeType)
		}

		result.Chunks = append(result.Chunks, chunk)
		totalBytes += len(chunk)
		c.log.Info("Received audio chunk %d (%d bytes, %d total)",
			len(result.Chunks), len(chunk), totalBytes)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}

	if len(result.Chunks) == 0 {
		return nil, ErrNoAudioData
	}

	return result, nil
}

// decodeEvent extracts one audio chunk and its mime type from an SSE data
// payload. Events without inline audio decode to an empty chunk.
func decodeEvent(payload string) ([]byte, string, error) {
	var event streamResponse

	err := json.Unmarshal([]byte(payload), &event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode stream event: %w", err)
	}

	if len(event.Candidates) == 0 || event.Candidates[0].Content == nil {
		return nil, "", nil
	}

	for _, candidatePart := range event.Candidates[0].Content.Parts {
		if candidatePart.InlineData == nil || candidatePart.InlineData.Data == "" {
			continue
		}

		data, decodeErr := base64.StdEncoding.DecodeString(candidatePart.InlineData.Data)
		if decodeErr != nil {
			return nil, "", fmt.Errorf("failed to decode audio chunk: %w", decodeErr)
		}

		return data, candidatePart.InlineData.MimeType, nil
	}

	return nil, "", nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// service. If structured parsing fails, it falls back to the raw response
// body so diagnostic information is preserved.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("%w: status %s", ErrRemote, resp.Status)
	}

	var errResp errorResponse

	err := json.Unmarshal(body, &errResp)
	if err == nil && errResp.Error.Message != "" {
		return fmt.Errorf("%w: %s (%s): %s",
			ErrRemote, resp.Status, errResp.Error.Status, errResp.Error.Message)
	}

	return fmt.Errorf("%w: status %s, body: %s", ErrRemote, resp.Status, string(body))
}

// ParseAudioMimeType extracts the PCM parameters from a reported audio mime
// type such as "audio/L16;codec=pcm;rate=24000". Missing or malformed
// parameters keep their defaults (16-bit, 24 kHz, mono).
func ParseAudioMimeType(mimeType string) core.PCMFormat {
	format := core.PCMFormat{
		SampleRate:    defaultSampleRate,
		BitsPerSample: defaultBitsPerSample,
		Channels:      defaultChannels,
	}

	for _, param := range strings.Split(mimeType, ";") {
		param = strings.TrimSpace(param)

		switch {
		case strings.HasPrefix(strings.ToLower(param), mimeRateParamPrefix):
			value := param[len(mimeRateParamPrefix):]

			rate, err := strconv.Atoi(value)
			if err == nil && rate > 0 {
				format.SampleRate = rate
			}
		case strings.HasPrefix(param, mimeL16Prefix):
			value := strings.TrimPrefix(param, mimeL16Prefix)

			bits, err := strconv.Atoi(value)
			if err == nil && bits > 0 {
				format.BitsPerSample = bits
			}
		}
	}

	return format
}
