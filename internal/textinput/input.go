// Package textinput resolves the text to synthesize and splits it into
// paragraphs.
//
// This package implements the input handling that was previously done
// inline in a Python utility, following Go coding standards and design
// principles for explicit behavior and maintainable code.
package textinput

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Regex pattern for paragraph boundaries: two or more consecutive line
// breaks, tolerating carriage returns and blank-looking lines.
const paragraphBoundaryPattern = `\r?\n(?:[ \t]*\r?\n)+`

// Static errors.
var (
	// ErrNoInput indicates that neither a file path nor inline text was given.
	ErrNoInput = errors.New("either a text file or inline text must be provided")
	// ErrBothInputs indicates that a file path and inline text were both given.
	ErrBothInputs = errors.New("cannot specify both a text file and inline text")
	// ErrEmptyText indicates that the resolved input contains no text.
	ErrEmptyText = errors.New("input text is empty")
	// ErrNotUTF8 indicates that an input file is not valid UTF-8 text.
	ErrNotUTF8 = errors.New("input file is not valid UTF-8 text")
)

// Resolve obtains the text to synthesize from exactly one of a file path or
// an inline string. Conflicting or missing inputs fail before any file or
// network activity; an unreadable or empty input fails afterwards.
func Resolve(filePath, inline string) (string, error) {
	if filePath == "" && inline == "" {
		return "", ErrNoInput
	}

	if filePath != "" && inline != "" {
		return "", ErrBothInputs
	}

	text := inline

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}

		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s", ErrNotUTF8, filePath)
		}

		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	return text, nil
}

// Splitter divides input text into ordered paragraph segments.
type Splitter struct {
	// Precompiled boundary pattern for performance.
	boundaryPattern *regexp.Regexp
}

// NewSplitter creates a splitter with its boundary pattern compiled upfront.
func NewSplitter() *Splitter {
	return &Splitter{
		boundaryPattern: regexp.MustCompile(paragraphBoundaryPattern),
	}
}

// Split returns the paragraph segments of text in original order. When
// splitting is disabled the whole text is returned as a single segment.
// When enabled, segments are separated by blank-line boundaries, trimmed of
// surrounding whitespace, and dropped if empty after trimming.
func (s *Splitter) Split(text string, enabled bool) []string {
	if !enabled {
		return []string{text}
	}

	pieces := s.boundaryPattern.Split(text, -1)
	paragraphs := make([]string, 0, len(pieces))

	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}

		paragraphs = append(paragraphs, trimmed)
	}

	return paragraphs
}
