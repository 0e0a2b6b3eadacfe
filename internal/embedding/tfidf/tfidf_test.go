package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_RequiresPrepare(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed(context.Background(), "text")
	assert.Error(t, err)

	err = e.Prepare(context.Background(), nil)
	assert.Error(t, err)
}

func TestEmbedder_PrepareAndEmbed(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"firewalls filter network traffic",
		"encryption protects network data",
		"firewalls and encryption together",
	}
	require.NoError(t, e.Prepare(context.Background(), corpus))
	assert.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed(context.Background(), "firewalls filter traffic")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	// L2 normalized
	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"firewalls filter network traffic",
		"encryption protects stored data",
	}
	require.NoError(t, e.Prepare(context.Background(), corpus))

	q, err := e.Embed(context.Background(), "how do firewalls filter traffic")
	require.NoError(t, err)
	a, err := e.Embed(context.Background(), corpus[0])
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), corpus[1])
	require.NoError(t, err)

	assert.Greater(t, dot(q, a), dot(q, b))
}

func TestEmbedder_UnknownTokensZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(context.Background(), []string{"alpha beta gamma"}))

	vec, err := e.Embed(context.Background(), "zzz qqq")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
