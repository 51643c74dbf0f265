package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "standard.yaml", `
name: Standard
description: Five lesson days and a review Saturday
slots:
  monday:
    morning: cat_math
    noon: pe
  saturday:
    morning: review
`)
	writeFile(t, dir, "light.yml", `
slots:
  friday:
    afternoon: cat_art
`)
	writeFile(t, dir, "broken.yaml", `
name: Broken
slots:
  sunday:
    morning: cat_math
`)
	writeFile(t, dir, "notes.txt", "ignored")

	core, logs := observer.New(zap.WarnLevel)
	loader := NewLoader(zap.New(core))
	require.NoError(t, loader.LoadFromDir(dir))

	presets := loader.List()
	require.Len(t, presets, 2)
	assert.Equal(t, "Standard", presets[0].Name)
	assert.Equal(t, "light", presets[1].Name)

	standard, ok := loader.Get("STANDARD")
	require.True(t, ok)
	assert.Equal(t, "preset:Standard", standard.Ref())
	assert.Equal(t, calendar.IntentCategory, standard.Template.Intent(calendar.Monday, calendar.Morning).Kind)
	assert.Equal(t, calendar.ActivityReview, standard.Template.Intent(calendar.Saturday, calendar.Morning).Activity)

	_, ok = loader.Get("broken")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("failed to load template preset").Len())
}

func TestLoaderMissingDir(t *testing.T) {
	loader := NewLoader(nil)
	require.NoError(t, loader.LoadFromDir(filepath.Join(t.TempDir(), "absent")))
	assert.Empty(t, loader.List())
}

func TestLoaderLoadFromFileRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "slots: [unclosed")
	loader := NewLoader(nil)
	assert.Error(t, loader.LoadFromFile(filepath.Join(dir, "bad.yaml")))
}
