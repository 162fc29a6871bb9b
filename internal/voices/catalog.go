// Package voices provides the fixed catalog of prebuilt Gemini voices and
// the selection logic used to resolve which voices a run should synthesize
// with.
package voices

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Default is the voice used when neither an explicit voice nor a random
// count is requested.
const Default = "Achird"

// CatalogSize is the number of prebuilt voices the remote model exposes.
const CatalogSize = 30

// Static errors.
var (
	// ErrUnknownVoice indicates that a requested voice is not in the catalog.
	ErrUnknownVoice = errors.New("unknown voice")
	// ErrCountRange indicates a random-voice count outside 1..CatalogSize.
	ErrCountRange = errors.New("random voice count out of range")
	// ErrSelectionConflict indicates that both an explicit voice and a
	// random count were requested.
	ErrSelectionConflict = errors.New("cannot combine an explicit voice with random voices")
)

// catalog is the fixed, ordered set of prebuilt voice names accepted by the
// Gemini TTS model.
var catalog = []string{
	"Zephyr", "Puck", "Charon", "Kore", "Fenrir", "Leda", "Orus", "Aoede",
	"Callirrhoe", "Autonoe", "Enceladus", "Iapetus", "Umbriel", "Algieba",
	"Despina", "Erinome", "Algenib", "Rasalgethi", "Laomedeia", "Achernar",
	"Alnilam", "Schedar", "Gacrux", "Pulcherrima", "Achird", "Zubenelgenubi",
	"Vindemiatrix", "Sadachbia", "Sadaltager", "Sulafat",
}

// Catalog returns a copy of the ordered voice catalog.
func Catalog() []string {
	names := make([]string, len(catalog))
	copy(names, catalog)

	return names
}

// Validate checks that a voice name is a member of the catalog.
func Validate(name string) error {
	for _, known := range catalog {
		if known == name {
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}

// Sample draws count distinct voices uniformly at random, without
// replacement, from the catalog. The random source is injected so tests can
// seed it; a nil source falls back to a time-seeded one.
func Sample(count int, rng *rand.Rand) ([]string, error) {
	if count < 1 || count > CatalogSize {
		return nil, fmt.Errorf("%w: got %d, want 1..%d", ErrCountRange, count, CatalogSize)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := Catalog()
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:count], nil
}

// Select resolves the ordered voice sequence for a run. An explicit voice
// and a random count are mutually exclusive; when neither is given the
// fallback voice is used. The explicit voice and the fallback are both
// validated against the catalog.
func Select(explicit string, randomCount int, fallback string, rng *rand.Rand) ([]string, error) {
	if explicit != "" && randomCount != 0 {
		return nil, ErrSelectionConflict
	}

	if randomCount != 0 {
		return Sample(randomCount, rng)
	}

	name := explicit
	if name == "" {
		name = fallback
	}

	err := Validate(name)
	if err != nil {
		return nil, err
	}

	return []string{name}, nil
}
