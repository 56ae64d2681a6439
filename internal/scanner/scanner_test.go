package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsAnalyzer/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.ArticleRef, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedScanner("naver"))
	reg.Register(namedScanner("RSS"))

	got, err := reg.Resolve(" Naver ")
	require.NoError(t, err)
	assert.Equal(t, "naver", got.Name())

	got, err = reg.Resolve("rss")
	require.NoError(t, err)
	assert.Equal(t, "RSS", got.Name())

	_, err = reg.Resolve("arxiv")
	assert.ErrorIs(t, err, ErrUnknownScanner)
	assert.Contains(t, err.Error(), `"arxiv"`)

	assert.Equal(t, []string{"naver", "rss"}, reg.Names())
}

func TestRegisterReplaces(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner("rss"))
	reg.Register(namedScanner("Rss"))

	assert.Len(t, reg.Names(), 1)
	got, err := reg.Resolve("rss")
	require.NoError(t, err)
	assert.Equal(t, "Rss", got.Name())
}
