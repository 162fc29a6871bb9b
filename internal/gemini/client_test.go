package gemini_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/gemini-tts-cli/internal/core"
	"github.com/book-expert/gemini-tts-cli/internal/gemini"
)

const testMimeType = "audio/L16;codec=pcm;rate=24000"

func createTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "gemini-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	return log
}

func newTestClient(t *testing.T, serverURL string) *gemini.Client {
	t.Helper()

	return gemini.New(
		serverURL,
		gemini.DefaultModel,
		"test-key",
		gemini.DefaultTemperature,
		10*time.Second,
		createTestLogger(t),
	)
}

// audioEvent renders one SSE data line carrying base64 PCM.
func audioEvent(pcm []byte) string {
	encoded := base64.StdEncoding.EncodeToString(pcm)

	return fmt.Sprintf(
		"data: {\"candidates\":[{\"content\":{\"parts\":[{\"inlineData\":{\"mimeType\":%q,\"data\":%q}}]}}]}\n\n",
		testMimeType, encoded)
}

func TestSynthesizeCollectsOrderedChunks(t *testing.T) {
	t.Parallel()

	first := []byte{0x01, 0x02, 0x03, 0x04}
	second := []byte{0x05, 0x06}

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "test-key", request.Header.Get("x-goog-api-key"))
			assert.Contains(t, request.URL.Path, "streamGenerateContent")

			responseWriter.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(responseWriter, audioEvent(first))
			// Metadata-only events carry no inline audio and are skipped.
			fmt.Fprint(responseWriter, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"\"}]}}]}\n\n")
			fmt.Fprint(responseWriter, audioEvent(second))
		}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  "Hello world.",
		Voice: "Kore",
	})
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, first, result.Chunks[0])
	assert.Equal(t, second, result.Chunks[1])
	assert.Equal(t, core.PCMFormat{SampleRate: 24000, BitsPerSample: 16, Channels: 1}, result.Format)
}

func TestSynthesizeValidatesInput(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:1")

	_, err := client.Synthesize(context.Background(), core.SynthesisRequest{Text: "", Voice: "Kore"})
	require.ErrorIs(t, err, gemini.ErrTextEmpty)

	_, err = client.Synthesize(context.Background(), core.SynthesisRequest{Text: "hi", Voice: ""})
	require.ErrorIs(t, err, gemini.ErrVoiceEmpty)
}

func TestSynthesizeReportsStructuredRemoteError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "application/json")
			responseWriter.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(responseWriter,
				`{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`)
		}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  "Hello.",
		Voice: "Kore",
	})
	require.ErrorIs(t, err, gemini.ErrRemote)
	assert.Contains(t, err.Error(), "UNAUTHENTICATED")
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestSynthesizeFailsOnEmptyStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(responseWriter, "data: {\"candidates\":[]}\n\n")
		}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  "Hello.",
		Voice: "Kore",
	})
	require.ErrorIs(t, err, gemini.ErrNoAudioData)
}

func TestSynthesizeDiscardsPartialAudioOnMalformedEvent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(responseWriter, audioEvent([]byte{0x01, 0x02}))
			fmt.Fprint(responseWriter, "data: {not json}\n\n")
		}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  "Hello.",
		Voice: "Kore",
	})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestParseAudioMimeType(t *testing.T) {
	t.Parallel()

	format := gemini.ParseAudioMimeType("audio/L16;codec=pcm;rate=24000")
	assert.Equal(t, core.PCMFormat{SampleRate: 24000, BitsPerSample: 16, Channels: 1}, format)

	format = gemini.ParseAudioMimeType("audio/L24;rate=48000")
	assert.Equal(t, core.PCMFormat{SampleRate: 48000, BitsPerSample: 24, Channels: 1}, format)

	// Malformed parameters keep the defaults.
	format = gemini.ParseAudioMimeType("audio/L16;rate=")
	assert.Equal(t, core.PCMFormat{SampleRate: 24000, BitsPerSample: 16, Channels: 1}, format)

	format = gemini.ParseAudioMimeType("audio/ogg")
	assert.Equal(t, core.PCMFormat{SampleRate: 24000, BitsPerSample: 16, Channels: 1}, format)
}
