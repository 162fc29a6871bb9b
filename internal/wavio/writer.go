// Package wavio serializes raw PCM audio into WAV files.
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/book-expert/gemini-tts-cli/internal/core"
)

const (
	dirPermissions = 0o750

	bytesPerSample16  = 2
	supportedBitDepth = 16
	pcmWavAudioFormat = 1

	tempSuffix = ".tmp"
)

// Static errors.
var (
	// ErrNoAudioData indicates there are no chunk bytes to write.
	ErrNoAudioData = errors.New("no audio data to write")
	// ErrUnsupportedBitDepth indicates a PCM bit depth other than 16.
	ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")
	// ErrMisalignedPCM indicates the payload does not divide into whole
	// frames for the reported format.
	ErrMisalignedPCM = errors.New("pcm payload not aligned to frame size")
)

// Write concatenates the ordered chunks and writes them as a linear-PCM WAV
// file at path, creating missing parent directories.
//
// The file is written to a temporary name in the destination directory and
// renamed into place, so a crash mid-write leaves at worst a stray .tmp
// file, never a truncated file under the final name.
func Write(path string, chunks [][]byte, format core.PCMFormat) error {
	pcm := concat(chunks)
	if len(pcm) == 0 {
		return ErrNoAudioData
	}

	if format.BitsPerSample != supportedBitDepth {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, format.BitsPerSample)
	}

	channels := format.Channels
	if channels < 1 {
		channels = 1
	}

	frameSize := bytesPerSample16 * channels
	if len(pcm)%frameSize != 0 {
		return fmt.Errorf("%w: %d bytes, frame size %d", ErrMisalignedPCM, len(pcm), frameSize)
	}

	dirErr := os.MkdirAll(filepath.Dir(path), dirPermissions)
	if dirErr != nil {
		return fmt.Errorf("failed to create output directory: %w", dirErr)
	}

	tempPath := path + "." + uuid.NewString() + tempSuffix

	writeErr := encodeToFile(tempPath, pcm, format.SampleRate, channels)
	if writeErr != nil {
		_ = os.Remove(tempPath)

		return writeErr
	}

	renameErr := os.Rename(tempPath, path)
	if renameErr != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to move audio file into place: %w", renameErr)
	}

	return nil
}

// encodeToFile writes the PCM payload as a WAV container at tempPath.
func encodeToFile(tempPath string, pcm []byte, sampleRate, channels int) error {
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	encoder := wav.NewEncoder(file, sampleRate, supportedBitDepth, channels, pcmWavAudioFormat)

	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samplesFromPCM(pcm),
		SourceBitDepth: supportedBitDepth,
	}

	writeErr := encoder.Write(buffer)
	if writeErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to encode audio: %w", writeErr)
	}

	closeErr := encoder.Close()
	if closeErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to finalize audio container: %w", closeErr)
	}

	syncErr := file.Sync()
	if syncErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to flush audio file: %w", syncErr)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("failed to close audio file: %w", err)
	}

	return nil
}

// samplesFromPCM converts little-endian 16-bit PCM bytes to int samples.
func samplesFromPCM(pcm []byte) []int {
	samples := make([]int, len(pcm)/bytesPerSample16)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample16:])))
	}

	return samples
}

func concat(chunks [][]byte) []byte {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}

	joined := make([]byte, 0, total)
	for _, chunk := range chunks {
		joined = append(joined, chunk...)
	}

	return joined
}
