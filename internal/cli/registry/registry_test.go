package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{Name: m.name}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return NewRegistry(&cfg.Config{}, translations)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("registers a new factory", func(t *testing.T) {
		registry := newTestRegistry(t)

		err := registry.Register("submit", &mockCommandFactory{name: "submit"})

		assert.NoError(t, err)
	})

	t.Run("rejects a duplicate name", func(t *testing.T) {
		registry := newTestRegistry(t)
		require.NoError(t, registry.Register("submit", &mockCommandFactory{name: "submit"}))

		err := registry.Register("submit", &mockCommandFactory{name: "submit"})

		assert.Error(t, err)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register("pr", &mockCommandFactory{name: "pr"}))
	require.NoError(t, registry.Register("config", &mockCommandFactory{name: "config"}))

	commands := registry.CreateCommands()

	require.Len(t, commands, 2)
	assert.Equal(t, "pr", commands[0].Name)
	assert.Equal(t, "config", commands[1].Name)
}
