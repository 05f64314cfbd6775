package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/brewguide/internal/logger"
)

const jsonCollection = `[
  {
    "title": "Hoffmann V60",
    "brewing_method": "V60",
    "parameters": {"total_brew_time_seconds": 45},
    "what_to_expect": {
      "description": "A bright cup.",
      "audio_script": "This brew takes under a minute."
    },
    "brewing_steps": [
      {"time_seconds": 15, "instruction": "Bloom with 60g", "short_instruction": "Bloom", "audio_script": "You have 15 seconds to bloom."},
      {"time_seconds": 30, "instruction": "Pour to 250g", "audio_script": "Now wait 30 seconds."},
      {"time_seconds": 0, "instruction": "Serve"}
    ]
  },
  {
    "title": "Hoffmann V60",
    "brewing_method": "V60",
    "brewing_steps": [{"time_seconds": 10, "instruction": "Pour"}]
  }
]`

const yamlRecipe = `
title: French Press
brewing_method: French Press
notes: Four minutes of steeping.
tags: [immersion]
parameters:
  total_brew_time_seconds: 240
brewing_steps:
  - time_seconds: 240
    instruction: Steep
    audio_script: Now wait four minutes.
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFileJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "recipes.json", jsonCollection)

	recipes, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}

	r := recipes[0]
	if r.ID != "hoffmann-v60" || r.Method != "V60" {
		t.Fatalf("unexpected recipe header: %+v", r)
	}
	if r.DeclaredTotal != 45*time.Second {
		t.Fatalf("expected declared total 45s, got %s", r.DeclaredTotal)
	}
	if r.Intro != "This brew takes under a minute." || r.Description != "A bright cup." {
		t.Fatalf("what_to_expect not mapped: intro=%q desc=%q", r.Intro, r.Description)
	}
	if len(r.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(r.Steps))
	}
	if r.Steps[0].Duration != 15*time.Second || r.Steps[0].ShortInstruction != "Bloom" || r.Steps[0].Order != 1 {
		t.Fatalf("step 1 not mapped: %+v", r.Steps[0])
	}
	if r.Steps[2].Duration != 0 || r.Steps[2].Narration != "" {
		t.Fatalf("zero-duration step not mapped: %+v", r.Steps[2])
	}
}

func TestLoadFileYAMLSingle(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "press.yaml", yamlRecipe)

	recipes, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	r := recipes[0]
	if r.ID != "french-press" || r.Description != "Four minutes of steeping." {
		t.Fatalf("unexpected recipe: %+v", r)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "immersion" {
		t.Fatalf("tags not mapped: %v", r.Tags)
	}
	if r.Steps[0].Duration != 4*time.Minute {
		t.Fatalf("expected 4m step, got %s", r.Steps[0].Duration)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"negative step", "neg.json", `{"title":"X","brewing_steps":[{"time_seconds":-5}]}`, "negative"},
		{"missing title", "notitle.json", `{"brewing_steps":[]}`, "title is required"},
		{"malformed json", "bad.json", `{"title":`, "parse recipe"},
		{"malformed yaml", "bad.yaml", "title: [unterminated", "parse recipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, dir, tt.file, tt.body)
			_, err := LoadFile(p)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadCollectionDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", jsonCollection)
	writeFile(t, dir, "b.yml", yamlRecipe)
	writeFile(t, dir, "README.md", "not a recipe")

	recipes, err := LoadCollection(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recipes) != 3 {
		t.Fatalf("expected 3 recipes, got %d", len(recipes))
	}

	ids := map[string]bool{}
	for _, r := range recipes {
		if ids[r.ID] {
			t.Fatalf("duplicate ID %s", r.ID)
		}
		ids[r.ID] = true
	}
	for _, want := range []string{"hoffmann-v60", "hoffmann-v60-2", "french-press"} {
		if !ids[want] {
			t.Errorf("missing recipe %s in %v", want, ids)
		}
	}
}

func TestLoadCollectionSuffixCollision(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[
	  {"title": "V60 2", "brewing_steps": [{"time_seconds": 10}]},
	  {"title": "V60", "brewing_steps": [{"time_seconds": 10}]},
	  {"title": "V60", "brewing_steps": [{"time_seconds": 10}]}
	]`)

	recipes, err := LoadCollection(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"v60-2", "v60", "v60-3"}
	if len(recipes) != len(want) {
		t.Fatalf("expected %d recipes, got %d", len(want), len(recipes))
	}
	for i, r := range recipes {
		if r.ID != want[i] {
			t.Errorf("recipe %d: expected ID %s, got %s", i, want[i], r.ID)
		}
	}

	log := logger.New(logger.LevelOff, nil)
	src, err := NewFileSource(dir, log)
	if err != nil {
		t.Fatalf("new file source: %v", err)
	}
	if n := len(src.All()); n != 3 {
		t.Fatalf("expected 3 recipes in source, got %d", n)
	}
}

func TestLoadCollectionMissing(t *testing.T) {
	if _, err := LoadCollection(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing path")
	}
	if _, err := LoadCollection(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "press.yaml", yamlRecipe)
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	src, err := NewFileSource(p, log)
	if err != nil {
		t.Fatalf("new file source: %v", err)
	}
	if _, err := src.Get(ctx, "french-press"); err != nil {
		t.Fatalf("get: %v", err)
	}

	writeFile(t, dir, "press.yaml", strings.Replace(yamlRecipe, "French Press", "Clever Dripper", 1))
	if err := src.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := src.Get(ctx, "french-press"); err == nil {
		t.Fatal("old recipe still present after reload")
	}
	if _, err := src.Get(ctx, "clever-dripper"); err != nil {
		t.Fatalf("reloaded recipe missing: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := src.Reload(cancelled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"James Hoffmann V60": "james-hoffmann-v60",
		"  Tetsu 4:6  ":      "tetsu-4-6",
		"!!!":                "recipe",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
