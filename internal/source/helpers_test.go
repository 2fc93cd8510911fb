package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/schema"
)

func loadPeople(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load(filepath.Join("testdata", "people.cue"))
	require.NoError(t, err)
	return s
}

func createTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func names(recs []schema.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i], _ = r["Name"].(string)
	}
	return out
}
