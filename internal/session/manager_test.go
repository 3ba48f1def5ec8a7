package session

import (
	"context"
	"testing"

	"cdpmock/internal/logger"
	"cdpmock/pkg/browser/browsertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLeaked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewManager(logger.NewTest(t))
	released := m.Create(browsertest.New(), WithGrace(0))
	leaked := m.Create(browsertest.New(), WithGrace(0))
	m.Create(browsertest.New(), WithGrace(0))

	_, err := released.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, released.Stop(ctx))
	_, err = leaked.Start(ctx)
	require.NoError(t, err)

	assert.Len(t, m.List(), 3)
	assert.Equal(t, []string{string(leaked.ID())}, idsToStrings(m.Leaked()))

	require.NoError(t, leaked.Stop(ctx))
	assert.Empty(t, m.Leaked())
}

func TestManagerGetDelete(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create(browsertest.New())

	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Delete(s.ID())
	_, ok = m.Get(s.ID())
	assert.False(t, ok)
	assert.Empty(t, m.List())
}

func idsToStrings[T ~string](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
