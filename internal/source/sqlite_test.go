package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
)

func seedPeople(t *testing.T, db *DB, s *schema.Schema) {
	t.Helper()
	ctx := context.Background()
	recs, err := ReadFile(filepath.Join("testdata", "people.yaml"), s)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable(ctx, "people", s))
	require.NoError(t, db.Insert(ctx, "people", s, recs))
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	var mode string
	require.NoError(t, db.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestReadTable_RoundTrip(t *testing.T) {
	s := loadPeople(t)
	db := createTestDB(t)
	seedPeople(t, db, s)

	recs, err := db.ReadTable(context.Background(), "people", s, queryir.Group{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"Bob", "ann", "Carl"}, names(recs))

	bob := recs[0]
	assert.Equal(t, int64(30), bob["Age"])
	assert.Equal(t, 7.5, bob["Score"])
	assert.Equal(t, true, bob["Active"])
	assert.True(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC).Equal(bob["Joined"].(time.Time)))
	assert.Equal(t, ir.IRArray{ir.IRString("admin"), ir.IRString("ops")}, bob["Tags"])

	// Nested records have no column.
	assert.NotContains(t, bob, "Address")

	ann := recs[1]
	assert.Equal(t, "Annie", ann["Nickname"])
	assert.Equal(t, false, ann["Active"])
	assert.NotContains(t, ann, "Score")
	assert.NotContains(t, ann, "Tags")
}

func TestReadTable_PushesDownFilter(t *testing.T) {
	s := loadPeople(t)
	db := createTestDB(t)
	seedPeople(t, db, s)

	tests := []struct {
		name  string
		group queryir.Group
		want  []string
	}{
		{
			name:  "int comparison",
			group: queryir.And(queryir.Where("Age", queryir.OpLessThan, ir.IRInt(30))),
			want:  []string{"ann", "Carl"},
		},
		{
			name: "bool and float",
			group: queryir.And(
				queryir.Where("Active", queryir.OpEqualTo, ir.IRBool(true)),
				queryir.Where("Score", queryir.OpGreaterThan, ir.IRString("5")),
			),
			want: []string{"Bob"},
		},
		{
			name:  "text predicates are left to the view",
			group: queryir.And(queryir.Where("Name", queryir.OpEqualTo, ir.IRString("nobody"))),
			want:  []string{"Bob", "ann", "Carl"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := db.ReadTable(context.Background(), "people", s, tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
		})
	}
}

func TestReadTable_InvalidTable(t *testing.T) {
	s := loadPeople(t)
	db := createTestDB(t)

	_, err := db.ReadTable(context.Background(), "people; DROP TABLE x", s, queryir.Group{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")

	_, err = db.ReadTable(context.Background(), "missing", s, queryir.Group{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query missing")
}

func TestCreateTable_Idempotent(t *testing.T) {
	s := loadPeople(t)
	db := createTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateTable(ctx, "people", s))
	}
}

func TestInsert_RejectsFloatsInOpaque(t *testing.T) {
	s := loadPeople(t)
	db := createTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.CreateTable(ctx, "people", s))

	err := db.Insert(ctx, "people", s, []schema.Record{{"Name": "x", "Tags": []any{1.5}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column Tags")

	recs, err := db.ReadTable(ctx, "people", s, queryir.Group{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
