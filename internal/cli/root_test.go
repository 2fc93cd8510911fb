package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sieve", cmd.Use)
	assert.Contains(t, cmd.Long, "materialized view")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"query", "validate", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	query, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	for _, name := range []string{"schema", "data", "db", "table", "filter", "filter-json", "orderby", "skip", "top", "dedupe"} {
		assert.NotNil(t, query.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "-1", query.Flags().Lookup("top").DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	test, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.NotNil(t, test.Flags().Lookup("update"))
	assert.NotNil(t, test.Flags().Lookup("filter"))
	assert.NotNil(t, test.Flags().Lookup("parallel"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	_, err := execute(t, cmd, "--format", "xml", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("text"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
