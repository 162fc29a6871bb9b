// Package naming builds output file paths for generated audio.
//
// This package focuses on deriving collision-free, filesystem-safe WAV
// paths from the run inputs: an optional explicit base name, the paragraph
// text, the voice, a timestamp, and an optional paragraph index.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the fixed-width, lexically sortable timestamp format
// embedded in every output filename.
const TimestampLayout = "20060102_150405"

// Base component bounds.
const (
	// maxBaseLength bounds the sanitized base component to avoid
	// path-length failures on long input text.
	maxBaseLength = 50
	// wordPrefixCount is how many leading words of the paragraph text
	// form the derived base component.
	wordPrefixCount = 6
	// fallbackBase is substituted when sanitization leaves nothing usable.
	fallbackBase = "speech"
)

const (
	wavExtension           = ".wav"
	invalidCharReplacement = "_"
)

// sanitizeReplacer replaces characters that are invalid in most filesystems.
var sanitizeReplacer = strings.NewReplacer(
	"<", invalidCharReplacement,
	">", invalidCharReplacement,
	":", invalidCharReplacement,
	"\"", invalidCharReplacement,
	"/", invalidCharReplacement,
	"\\", invalidCharReplacement,
	"|", invalidCharReplacement,
	"?", invalidCharReplacement,
	"*", invalidCharReplacement,
)

// BuildPath derives the output path for one (paragraph, voice) pair. It is
// a pure function of its arguments.
//
// The base component is the explicit name when given, otherwise the first
// few words of the paragraph text; either way it is sanitized and bounded.
// With partIndex > 0 the file gains a _part<N> suffix and is placed in a
// per-run subfolder named after the base component:
//
//	<folder>/<base>_<voice>_<timestamp>.wav
//	<folder>/<base>/<base>_part<N>_<voice>_<timestamp>.wav
func BuildPath(folder, explicitName, paragraph, voice string, timestamp time.Time, partIndex int) string {
	base := BaseComponent(explicitName, paragraph)
	stamp := timestamp.Format(TimestampLayout)

	if partIndex > 0 {
		name := fmt.Sprintf("%s_part%d_%s_%s%s", base, partIndex, voice, stamp, wavExtension)

		return filepath.Join(folder, base, name)
	}

	name := fmt.Sprintf("%s_%s_%s%s", base, voice, stamp, wavExtension)

	return filepath.Join(folder, name)
}

// BaseComponent returns the sanitized, bounded base component for a pair.
// An explicit name wins over the derived word prefix; a base that ends up
// empty after sanitization falls back to a fixed placeholder so the final
// filename is never empty.
func BaseComponent(explicitName, paragraph string) string {
	source := explicitName
	if source == "" {
		source = wordPrefix(paragraph)
	}

	base := Sanitize(source)
	if len(base) > maxBaseLength {
		base = base[:maxBaseLength]
	}

	base = strings.Trim(base, "_.")
	if base == "" {
		return fallbackBase
	}

	return base
}

// Sanitize replaces filesystem-hostile characters and whitespace runs with
// underscores and strips control characters.
func Sanitize(name string) string {
	sanitized := sanitizeReplacer.Replace(name)

	var builder strings.Builder

	builder.Grow(len(sanitized))

	previousWasSpace := false

	for _, r := range sanitized {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			if !previousWasSpace {
				builder.WriteString(invalidCharReplacement)
			}

			previousWasSpace = true
		default:
			builder.WriteRune(r)

			previousWasSpace = false
		}
	}

	return builder.String()
}

// wordPrefix joins the first few words of text with underscores.
func wordPrefix(text string) string {
	words := strings.Fields(text)
	if len(words) > wordPrefixCount {
		words = words[:wordPrefixCount]
	}

	return strings.Join(words, invalidCharReplacement)
}
