// Package runner drives the paragraph-by-voice synthesis loop.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/gemini-tts-cli/internal/core"
	"github.com/book-expert/gemini-tts-cli/internal/naming"
	"github.com/book-expert/gemini-tts-cli/internal/wavio"
)

// Log formats.
const (
	logFmtPairStarted   = "Synthesizing paragraph %d/%d with voice %s"
	logFmtPairCompleted = "Generated audio: %s (%d chunks)"
	logFmtPairFailed    = "Paragraph %d with voice %s failed: %v"
	logFmtSummary       = "Run complete: %d succeeded, %d failed"

	progressLineFormat = "Generated: %s\n"
)

// ErrPairsFailed indicates that one or more (paragraph, voice) pairs did
// not produce an output file.
var ErrPairsFailed = errors.New("some synthesis pairs failed")

// Job describes one full run: the resolved paragraphs, the voice sequence
// applied to each of them, and the output naming inputs.
type Job struct {
	Paragraphs   []string
	Voices       []string
	OutputFolder string
	BaseName     string
	SplitMode    bool
}

// Summary reports how many (paragraph, voice) pairs succeeded and failed.
type Summary struct {
	Succeeded int
	Failed    int
}

// Runner iterates the Cartesian product of paragraphs and voices in a
// deterministic nested order: paragraphs outer, voices inner. Pairs are
// processed sequentially and independently; a failed pair is logged and
// the run continues with the next one.
type Runner struct {
	synth core.Synthesizer
	log   *logger.Logger
	out   io.Writer
	now   func() time.Time
}

// New creates a runner. Progress lines (one per completed file) are written
// to out.
func New(synth core.Synthesizer, log *logger.Logger, out io.Writer) *Runner {
	return &Runner{
		synth: synth,
		log:   log,
		out:   out,
		now:   time.Now,
	}
}

// Run executes the job and returns a summary. The returned error is
// ErrPairsFailed when any pair failed; configuration problems are expected
// to be caught before Run is called.
func (r *Runner) Run(ctx context.Context, job Job) (Summary, error) {
	var summary Summary

	totalParagraphs := len(job.Paragraphs)

	for paragraphIndex, paragraph := range job.Paragraphs {
		for _, voice := range job.Voices {
			err := r.processPair(ctx, job, paragraph, paragraphIndex, voice)
			if err != nil {
				summary.Failed++

				r.log.Error(logFmtPairFailed, paragraphIndex+1, voice, err)

				continue
			}

			summary.Succeeded++

			r.log.Info("Processed paragraph %d/%d", paragraphIndex+1, totalParagraphs)
		}
	}

	r.log.Info(logFmtSummary, summary.Succeeded, summary.Failed)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d",
			ErrPairsFailed, summary.Failed, summary.Succeeded+summary.Failed)
	}

	return summary, nil
}

// processPair synthesizes one (paragraph, voice) pair and writes its WAV
// file. Partial audio is never written: a synthesis failure returns before
// any file I/O happens.
func (r *Runner) processPair(
	ctx context.Context,
	job Job,
	paragraph string,
	paragraphIndex int,
	voice string,
) error {
	partIndex := 0
	if job.SplitMode {
		partIndex = paragraphIndex + 1
	}

	outputPath := naming.BuildPath(
		job.OutputFolder,
		job.BaseName,
		paragraph,
		voice,
		r.now(),
		partIndex,
	)

	r.log.Info(logFmtPairStarted, paragraphIndex+1, len(job.Paragraphs), voice)

	result, err := r.synth.Synthesize(ctx, core.SynthesisRequest{
		Text:  paragraph,
		Voice: voice,
	})
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	err = wavio.Write(outputPath, result.Chunks, result.Format)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	r.log.Info(logFmtPairCompleted, outputPath, len(result.Chunks))
	fmt.Fprintf(r.out, progressLineFormat, outputPath)

	return nil
}
