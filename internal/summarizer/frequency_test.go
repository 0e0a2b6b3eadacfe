package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_LimitsSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Networks connect hosts. Firewalls protect networks. Encryption protects data. " +
		"Routers forward packets. Switches connect segments. Hubs are obsolete."
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "."))
}

func TestSummarize_ShortTextPassedThrough(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("no sentence terminator here", 3)
	require.NoError(t, err)
	assert.Equal(t, "no sentence terminator here", out)
}

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Alpha topic sentence one. Beta topic sentence two. Alpha beta sentence three."
	out, err := s.Summarize(text, 3)
	require.NoError(t, err)
	one := strings.Index(out, "one")
	three := strings.Index(out, "three")
	require.GreaterOrEqual(t, one, 0)
	require.GreaterOrEqual(t, three, 0)
	assert.Less(t, one, three)
}
