package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidatePreset_Valid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		file    string
		content string
		wantID  string
	}{
		{"duel.yaml", "name: Duel\nmax_rounds: 6\nmax_players: 2\n", "duel"},
		{"crowd.json", `{"id": "Crowd", "max_rounds": 10, "max_players": 50}`, "crowd"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result := validatePreset(writePreset(t, dir, tt.file, tt.content))
			assert.True(t, result.Valid, "errors: %v", result.Errors)
			assert.Equal(t, tt.wantID, result.ID)
			assert.Equal(t, tt.file, result.File)
		})
	}
}

func TestValidatePreset_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"too few rounds", "short.yaml", "max_rounds: 1\nmax_players: 2\n", "invalid preset"},
		{"too many players", "huge.json", `{"max_rounds": 5, "max_players": 500}`, "invalid preset"},
		{"missing bounds", "empty.yaml", "name: Nothing\n", "invalid preset"},
		{"broken syntax", "broken.json", `{"max_rounds": `, "failed to read preset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePreset(writePreset(t, dir, tt.file, tt.content))
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestValidatePreset_MissingFile(t *testing.T) {
	result := validatePreset("/non/existent/preset.yaml")
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "a.yaml", "id: shared\nmax_rounds: 5\nmax_players: 2\n")
	writePreset(t, dir, "b.json", `{"id": "shared", "max_rounds": 8, "max_players": 4}`)
	writePreset(t, dir, "classic.yml", "max_rounds: 7\nmax_players: 3\n")
	writePreset(t, dir, "notes.txt", "not a preset")

	results, err := validateDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 3)

	byFile := map[string]ValidationResult{}
	for _, r := range results {
		byFile[r.File] = r
	}

	assert.True(t, byFile["a.yaml"].Valid)
	assert.False(t, byFile["b.json"].Valid, "duplicate id")
	assert.Contains(t, byFile["b.json"].Errors[len(byFile["b.json"].Errors)-1], "a.yaml")

	classic := byFile["classic.yml"]
	assert.True(t, classic.Valid)
	assert.Contains(t, classic.Errors, `✓ overrides built-in preset "classic"`)
}

func TestValidateDir_ShippedPresets(t *testing.T) {
	results, err := validateDir(filepath.Join("..", "presets"))
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.True(t, r.Valid, "%s: %v", r.File, r.Errors)
	}
}
