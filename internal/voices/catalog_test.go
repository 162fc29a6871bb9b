package voices_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/gemini-tts-cli/internal/voices"
)

func TestCatalogIsFixedSize(t *testing.T) {
	t.Parallel()

	names := voices.Catalog()
	require.Len(t, names, voices.CatalogSize)

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		_, duplicate := seen[name]
		require.False(t, duplicate, "duplicate catalog entry %q", name)
		seen[name] = struct{}{}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, voices.Validate("Kore"))
	require.NoError(t, voices.Validate(voices.Default))

	err := voices.Validate("NotAVoice")
	require.ErrorIs(t, err, voices.ErrUnknownVoice)
}

func TestSampleCardinalityAndMembership(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	members := make(map[string]struct{}, voices.CatalogSize)

	for _, name := range voices.Catalog() {
		members[name] = struct{}{}
	}

	for count := 1; count <= voices.CatalogSize; count++ {
		drawn, err := voices.Sample(count, rng)
		require.NoError(t, err)
		require.Len(t, drawn, count)

		distinct := make(map[string]struct{}, count)
		for _, name := range drawn {
			_, ok := members[name]
			assert.True(t, ok, "drawn voice %q not in catalog", name)
			distinct[name] = struct{}{}
		}

		assert.Len(t, distinct, count, "draw of %d contained duplicates", count)
	}
}

func TestSampleRejectsOutOfRangeCounts(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	_, err := voices.Sample(0, rng)
	require.ErrorIs(t, err, voices.ErrCountRange)

	_, err = voices.Sample(voices.CatalogSize+1, rng)
	require.ErrorIs(t, err, voices.ErrCountRange)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))

	selected, err := voices.Select("", 0, voices.Default, rng)
	require.NoError(t, err)
	assert.Equal(t, []string{voices.Default}, selected)

	selected, err = voices.Select("Puck", 0, voices.Default, rng)
	require.NoError(t, err)
	assert.Equal(t, []string{"Puck"}, selected)

	selected, err = voices.Select("", 3, voices.Default, rng)
	require.NoError(t, err)
	assert.Len(t, selected, 3)

	_, err = voices.Select("Puck", 3, voices.Default, rng)
	require.ErrorIs(t, err, voices.ErrSelectionConflict)

	_, err = voices.Select("NotAVoice", 0, voices.Default, rng)
	require.ErrorIs(t, err, voices.ErrUnknownVoice)
}
