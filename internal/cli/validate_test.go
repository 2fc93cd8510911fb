package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func runValidateJSON(t *testing.T, args ...string) (validateResponse, error) {
	t.Helper()
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, args...)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

const adultsFilter = `{
	"operatorType": "And",
	"filters": [{"propertyName": "Age", "operatorType": "GreaterThanOrEqualTo", "value": 18}],
	"subGroups": []
}`

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	filter := writeFile(t, dir, "filter.json", adultsFilter)
	sort := writeFile(t, dir, "sort.json", `[{"propertyName": "Name", "direction": "Descending"}]`)

	resp, err := runValidateJSON(t, "--schema", peopleSchema, "--sort", sort, filter)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Fingerprint, 64)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidate_FingerprintIgnoresEmptyParts(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "plain.json", adultsFilter)
	padded := writeFile(t, dir, "padded.json", `{
		"operatorType": "And",
		"filters": [
			{"propertyName": "Age", "operatorType": "GreaterThanOrEqualTo", "value": 18},
			{"propertyName": "", "operatorType": "None"}
		],
		"subGroups": [{"operatorType": "Or", "filters": [], "subGroups": []}]
	}`)

	a, err := runValidateJSON(t, "--schema", peopleSchema, plain)
	require.NoError(t, err)
	b, err := runValidateJSON(t, "--schema", peopleSchema, padded)
	require.NoError(t, err)

	assert.Equal(t, a.Data.Fingerprint, b.Data.Fingerprint)
}

func TestValidate_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		sort     string
		code     string
		source   string
		property string
	}{
		{
			name:     "unknown property",
			filter:   `{"operatorType": "And", "filters": [{"propertyName": "Height", "operatorType": "EqualTo", "value": 3}]}`,
			code:     "UNKNOWN_PROPERTY",
			source:   "filter",
			property: "Height",
		},
		{
			name:     "relational on text",
			filter:   `{"operatorType": "And", "filters": [{"propertyName": "Name", "operatorType": "LessThan", "value": "m"}]}`,
			code:     "UNSUPPORTED_OPERATOR_FOR_TYPE",
			source:   "filter",
			property: "Name",
		},
		{
			name:   "none group with children",
			filter: `{"operatorType": "None", "filters": [{"propertyName": "Age", "operatorType": "EqualTo", "value": 1}]}`,
			code:   "NOT_IMPLEMENTED",
			source: "filter",
		},
		{
			name:   "malformed json",
			filter: `{"operatorType":`,
			code:   "INVALID_ARGUMENT",
			source: "filter",
		},
		{
			name:     "sort on opaque field",
			filter:   adultsFilter,
			sort:     `[{"propertyName": "Tags", "direction": "Ascending"}]`,
			code:     "NOT_SORTABLE",
			source:   "sort",
			property: "Tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := []string{"--schema", peopleSchema}
			if tt.sort != "" {
				args = append(args, "--sort", writeFile(t, dir, "sort.json", tt.sort))
			}
			args = append(args, writeFile(t, dir, "filter.json", tt.filter))

			resp, err := runValidateJSON(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			assert.Equal(t, "error", resp.Status)
			assert.False(t, resp.Data.Valid)
			assert.Empty(t, resp.Data.Fingerprint)
			require.Len(t, resp.Data.Errors, 1)

			got := resp.Data.Errors[0]
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.source, got.Source)
			assert.Equal(t, tt.property, got.Property)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidate_CommandErrors(t *testing.T) {
	dir := t.TempDir()
	filter := writeFile(t, dir, "filter.json", adultsFilter)

	tests := []struct {
		name string
		args []string
	}{
		{"no schema", []string{filter}},
		{"missing schema", []string{"--schema", "testdata/missing.cue", filter}},
		{"missing filter", []string{"--schema", peopleSchema, "testdata/missing.json"}},
		{"missing sort", []string{"--schema", peopleSchema, "--sort", "testdata/missing.json", filter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runValidateJSON(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestValidate_Text(t *testing.T) {
	dir := t.TempDir()

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--schema", peopleSchema, writeFile(t, dir, "ok.json", adultsFilter))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Filter valid")
	assert.Contains(t, out, "fingerprint: ")

	cmd = NewValidateCommand(&RootOptions{Format: "text"})
	bad := writeFile(t, dir, "bad.json", `{"operatorType": "And", "filters": [{"propertyName": "Height", "operatorType": "EqualTo"}]}`)
	out, err = execute(t, cmd, "--schema", peopleSchema, bad)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "UNKNOWN_PROPERTY")
	assert.Contains(t, out, "property: Height")
}

func TestValidate_MissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--schema", peopleSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
