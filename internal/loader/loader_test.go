package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelforest/internal/models"
	"github.com/leapstack-labs/modelforest/internal/testutil"
)

func TestLoadFile_YAML(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "models.yaml", testutil.ScenarioYAML)

	set, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, set.Indexes())
	c, ok := set.Get("C")
	require.True(t, ok)
	assert.Equal(t, []models.UsageReference{
		{Type: "C", Parent: "A"},
		{Type: "C", Parent: "D"},
	}, c.Usages)
}

func TestLoadFile_JSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "models.json", `{
		"models": [
			{"index": "User"},
			{"index": "Token", "usages": [{}]},
			{"index": "Email", "usages": [{"type": "Email", "parent": "User"}]}
		]
	}`)

	set, err := LoadFile(path)
	require.NoError(t, err)

	token, _ := set.Get("Token")
	assert.Equal(t, []models.UsageReference{{Type: "Token"}}, token.Usages)
	assert.False(t, token.Usages[0].Owned())
	assert.Equal(t, 3, set.Len())
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.json", FormatJSON, false},
		{"a.toml", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		format    Format
		errSubstr string
	}{
		{"unknown yaml field", "models:\n  - index: A\n    fields: []\n", FormatYAML, "invalid yaml"},
		{"broken json", `{"models": [`, FormatJSON, "invalid json"},
		{"duplicate index", "models:\n  - index: A\n  - index: A\n", FormatYAML, `models[1]: duplicate model index "A"`},
		{"empty index", "models:\n  - usages: []\n", FormatYAML, "models[0]: model index is empty"},
		{"bad format", "", Format("xml"), "unknown document format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestParse_EmptyYAML(t *testing.T) {
	set, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/does/not/exist.yaml")
	assert.ErrorContains(t, err, "failed to read")
}
