package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslations(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)
	require.NotNil(t, trans)
}

func TestGetMessage(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)

	t.Run("known message with template data", func(t *testing.T) {
		msg := trans.GetMessage("submit_starting", 0, map[string]interface{}{
			"Branch": "feature/login",
		})
		assert.Equal(t, "Submitting branch feature/login...", msg)
	})

	t.Run("missing message falls back to marker", func(t *testing.T) {
		msg := trans.GetMessage("does_not_exist", 0, nil)
		assert.Equal(t, "Translation missing: does_not_exist", msg)
	})
}

func TestSetLanguage(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)

	assert.NoError(t, trans.SetLanguage("en"))
	assert.Error(t, trans.SetLanguage("xx"))
}
