package moderation_test

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("Strips json code fence", func(t *testing.T) {
		got, err := moderation.ExtractJSON("```json\n{\"safe\": false, \"reason\": \"x\", \"categories\": [\"violence\"]}\n```")

		require.NoError(t, err)
		assert.JSONEq(t, `{"safe": false, "reason": "x", "categories": ["violence"]}`, got)
	})

	t.Run("Strips bare fence", func(t *testing.T) {
		got, err := moderation.ExtractJSON("```\n{\"safe\": true}\n```")

		require.NoError(t, err)
		assert.Equal(t, `{"safe": true}`, got)
	})

	t.Run("Finds object inside prose", func(t *testing.T) {
		got, err := moderation.ExtractJSON("Sure! Here you go: {\"safe\": true, \"reason\": \"ok\"} Hope it helps.")

		require.NoError(t, err)
		assert.Equal(t, `{"safe": true, "reason": "ok"}`, got)
	})

	t.Run("Spans first to last brace across lines", func(t *testing.T) {
		got, err := moderation.ExtractJSON("{\n\"a\": {\"b\": 1}\n}")

		require.NoError(t, err)
		assert.Equal(t, "{\n\"a\": {\"b\": 1}\n}", got)
	})

	t.Run("No object", func(t *testing.T) {
		_, err := moderation.ExtractJSON("I cannot help with that.")

		assert.ErrorIs(t, err, moderation.ErrNoJSONObject)
	})
}
