package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursetutor/internal/domain"
)

func TestNewOpenAI_RequiresModel(t *testing.T) {
	_, err := NewOpenAI(Config{})
	assert.Error(t, err)

	g, err := NewOpenAI(Config{Model: "mistral"})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestBuildPrompt(t *testing.T) {
	contexts := []domain.Chunk{
		{Source: "data/firewalls.pdf", Text: "Firewalls filter traffic."},
		{Source: "data/tls.md", Text: "TLS encrypts connections."},
	}
	prompt := buildPrompt("What does a firewall do?", contexts)

	assert.Contains(t, prompt, "[Excerpt 1: data/firewalls.pdf]")
	assert.Contains(t, prompt, "Firewalls filter traffic.")
	assert.Contains(t, prompt, "[Excerpt 2: data/tls.md]")
	assert.Contains(t, prompt, "Question: What does a firewall do?")
	// question comes after all excerpts
	assert.Less(t, strings.Index(prompt, "[Excerpt 2"), strings.Index(prompt, "Question:"))
}
