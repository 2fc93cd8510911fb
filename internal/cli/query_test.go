package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/source"
)

type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ViewID  string           `json:"view_id"`
		Matched int              `json:"matched"`
		Items   []map[string]any `json:"items"`
	} `json:"data"`
	Error *CLIError `json:"error"`
}

func runQueryJSON(t *testing.T, args ...string) (queryResponse, error) {
	t.Helper()
	cmd := NewQueryCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, args...)

	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func names(items []map[string]any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item["Name"].(string)
	}
	return out
}

func TestQuery_FilterAndSort(t *testing.T) {
	resp, err := runQueryJSON(t,
		"--schema", peopleSchema, "--data", peopleData,
		"--filter", "Age eq 25", "--orderby", "Name desc")
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Matched)
	assert.Equal(t, []string{"Carl", "ann"}, names(resp.Data.Items))
	assert.NotEmpty(t, resp.Data.ViewID)
}

func TestQuery_Paging(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"ann", "Bob", "Carl"}},
		{"skip", []string{"--skip", "1"}, []string{"Bob", "Carl"}},
		{"top", []string{"--top", "2"}, []string{"ann", "Bob"}},
		{"skip and top", []string{"--skip", "1", "--top", "1"}, []string{"Bob"}},
		{"skip past end", []string{"--skip", "10"}, []string{}},
		{"top zero", []string{"--top", "0"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--schema", peopleSchema, "--data", peopleData, "--orderby", "Name"}, tt.args...)
			resp, err := runQueryJSON(t, args...)
			require.NoError(t, err)

			assert.Equal(t, 3, resp.Data.Matched)
			assert.Equal(t, tt.want, names(resp.Data.Items))
		})
	}
}

func TestQuery_FilterJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filter.json", `{
		"operatorType": "And",
		"filters": [{"propertyName": "Active", "operatorType": "EqualTo", "value": true}],
		"subGroups": []
	}`)

	resp, err := runQueryJSON(t,
		"--schema", peopleSchema, "--data", peopleData,
		"--filter-json", path, "--orderby", "Age desc")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob", "Carl"}, names(resp.Data.Items))
}

func TestQuery_Dedupe(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "dupes.yaml", `
- {Name: Bob, Age: 30, Active: true, Joined: "2021-06-01"}
- {Name: Bob, Age: 30, Active: true, Joined: "2021-06-01"}
- {Name: Eve, Age: 41, Active: false, Joined: "2019-01-01"}
`)

	resp, err := runQueryJSON(t, "--schema", peopleSchema, "--data", data, "--dedupe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Eve"}, names(resp.Data.Items))
}

func TestQuery_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := schema.Load(peopleSchema)
	require.NoError(t, err)
	recs, err := source.ReadFile(peopleData, s)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "people.db")
	db, err := source.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable(ctx, "people", s))
	require.NoError(t, db.Insert(ctx, "people", s, recs))
	require.NoError(t, db.Close())

	resp, err := runQueryJSON(t,
		"--schema", peopleSchema, "--db", dbPath, "--table", "people",
		"--filter", "Age eq 25 and Active eq true")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Data.Matched)
	assert.Equal(t, []string{"Carl"}, names(resp.Data.Items))
}

func TestQuery_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code queryir.ErrorCode
	}{
		{"unknown property", []string{"--filter", "Height eq 3"}, queryir.ErrCodeUnknownProperty},
		{"operator not for type", []string{"--filter", "contains(Tags, 'a')"}, queryir.ErrCodeUnsupportedOperator},
		{"not sortable", []string{"--orderby", "Tags"}, queryir.ErrCodeNotSortable},
		{"bad skip", []string{"--skip", "-1"}, queryir.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--schema", peopleSchema, "--data", peopleData}, tt.args...)
			resp, err := runQueryJSON(t, args...)
			require.Error(t, err)

			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.code), resp.Error.Code)
		})
	}
}

func TestQuery_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no schema", []string{"--data", peopleData}, ErrCodeInvalidFlag},
		{"no source", []string{"--schema", peopleSchema}, ErrCodeInvalidFlag},
		{"two sources", []string{"--schema", peopleSchema, "--data", peopleData, "--db", "x.db"}, ErrCodeInvalidFlag},
		{"db without table", []string{"--schema", peopleSchema, "--db", "x.db"}, ErrCodeInvalidFlag},
		{"two filters", []string{"--schema", peopleSchema, "--data", peopleData, "--filter", "Age eq 1", "--filter-json", "f.json"}, ErrCodeInvalidFlag},
		{"missing schema file", []string{"--schema", "testdata/missing.cue", "--data", peopleData}, ErrCodeLoad},
		{"missing data file", []string{"--schema", peopleSchema, "--data", "testdata/missing.yaml"}, ErrCodeLoad},
		{"missing filter file", []string{"--schema", peopleSchema, "--data", peopleData, "--filter-json", "testdata/missing.json"}, ErrCodeLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := runQueryJSON(t, tt.args...)
			require.Error(t, err)

			assert.Equal(t, ExitCommandError, GetExitCode(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestQuery_TextOutput(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd,
		"--schema", peopleSchema, "--data", peopleData,
		"--filter", "Age eq 30", "--orderby", "Name")
	require.NoError(t, err)

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "[admin ops]")
	assert.NotContains(t, out, "Carl")
	assert.Contains(t, out, "1 of 1 record(s)")
}

func TestQuery_TextError(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd,
		"--schema", peopleSchema, "--data", peopleData, "--filter", "Height eq 3")
	require.Error(t, err)

	assert.Contains(t, out, "Error [UNKNOWN_PROPERTY]")
}
