package llm

import (
	"context"
	"errors"
	"testing"

	"dailybrief/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	models []core.ModelDescriptor
	err    error
	calls  int
}

func (s *stubLister) ListModels(ctx context.Context) ([]core.ModelDescriptor, error) {
	s.calls++
	return s.models, s.err
}

func gen(name string) core.ModelDescriptor {
	return core.ModelDescriptor{Name: name, SupportedOperations: []string{"countTokens", GenerateOperation}}
}

func TestSelectModel_PrefersPattern(t *testing.T) {
	lister := &stubLister{models: []core.ModelDescriptor{
		{Name: "models/embedding-001", SupportedOperations: []string{"embedContent"}},
		gen("models/gemini-2.5-pro"),
		gen("models/gemini-2.5-flash"),
		gen("models/gemini-2.0-flash"),
	}}

	name, err := SelectModel(context.Background(), lister, "credential", "flash")
	require.NoError(t, err)
	assert.Equal(t, "models/gemini-2.5-flash", name)
	assert.Equal(t, 1, lister.calls)
}

func TestSelectModel_FallsBackToFirstCapable(t *testing.T) {
	lister := &stubLister{models: []core.ModelDescriptor{
		{Name: "models/flash-embedding", SupportedOperations: []string{"embedContent"}},
		gen("models/gemini-2.5-pro"),
		gen("models/gemini-1.5-pro"),
	}}

	name, err := SelectModel(context.Background(), lister, "credential", "flash")
	require.NoError(t, err)
	assert.Equal(t, "models/gemini-2.5-pro", name)
}

func TestSelectModel_PatternIsCaseInsensitive(t *testing.T) {
	name, err := PickModel([]core.ModelDescriptor{gen("models/a"), gen("models/Gemini-FLASH")}, "gemini-flash")
	require.NoError(t, err)
	assert.Equal(t, "models/Gemini-FLASH", name)
}

func TestSelectModel_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no credential", func(t *testing.T) {
		lister := &stubLister{}
		_, err := SelectModel(ctx, lister, "  ", "flash")
		var se *SelectorError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, NoCredential, se.Kind)
		assert.Zero(t, lister.calls)
	})

	t.Run("list unavailable", func(t *testing.T) {
		_, err := SelectModel(ctx, &stubLister{err: errors.New("boom")}, "credential", "flash")
		var se *SelectorError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ListUnavailable, se.Kind)
		assert.Equal(t, StageListModels, se.Stage())
	})

	t.Run("no usable model", func(t *testing.T) {
		lister := &stubLister{models: []core.ModelDescriptor{
			{Name: "models/embedding-001", SupportedOperations: []string{"embedContent"}},
			{Name: "", SupportedOperations: []string{GenerateOperation}},
		}}
		_, err := SelectModel(ctx, lister, "credential", "flash")
		var se *SelectorError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, NoUsableModel, se.Kind)
		assert.Equal(t, StagePickModel, se.Stage())
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := PickModel([]core.ModelDescriptor{gen("models/a")}, "(")
		var se *SelectorError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, NoUsableModel, se.Kind)
	})
}
