// Package core defines the core types and interfaces for the gemini-tts-cli.
package core

import "context"

// PCMFormat describes the linear-PCM encoding of synthesized audio, as
// reported by the remote model for a given stream.
type PCMFormat struct {
	SampleRate    int
	BitsPerSample int
	Channels      int
}

// SynthesisRequest holds the inputs for a single synthesis call. One request
// is created per (paragraph, voice) pair and discarded after its audio is
// written.
type SynthesisRequest struct {
	Text  string
	Voice string
}

// SynthesisResult carries the ordered audio chunks received from the remote
// stream together with their PCM format. Chunks must be concatenated in
// order to reconstruct the full waveform.
type SynthesisResult struct {
	Chunks [][]byte
	Format PCMFormat
}

// Synthesizer defines the interface for a remote text-to-speech capability.
// Implementations block until the full stream is drained; on a mid-stream
// failure, already-received chunks are discarded and the error is returned.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}
