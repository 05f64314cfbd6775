package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*FileSource)(nil)

// document is the on-disk recipe layout shared by the JSON and YAML
// collections.
type document struct {
	Title         string         `json:"title" yaml:"title"`
	BrewingMethod string         `json:"brewing_method" yaml:"brewing_method"`
	Notes         string         `json:"notes" yaml:"notes"`
	Tags          []string       `json:"tags" yaml:"tags"`
	Parameters    parameters     `json:"parameters" yaml:"parameters"`
	WhatToExpect  *whatToExpect  `json:"what_to_expect" yaml:"what_to_expect"`
	BrewingSteps  []documentStep `json:"brewing_steps" yaml:"brewing_steps"`
}

type parameters struct {
	TotalBrewTimeSeconds int `json:"total_brew_time_seconds" yaml:"total_brew_time_seconds"`
}

type whatToExpect struct {
	Description string `json:"description" yaml:"description"`
	AudioScript string `json:"audio_script" yaml:"audio_script"`
}

type documentStep struct {
	TimeSeconds      int    `json:"time_seconds" yaml:"time_seconds"`
	Instruction      string `json:"instruction" yaml:"instruction"`
	ShortInstruction string `json:"short_instruction" yaml:"short_instruction"`
	AudioScript      string `json:"audio_script" yaml:"audio_script"`
}

// LoadCollection reads every recipe document under path. path may be a
// single file or a directory, which is walked recursively. Files with
// extensions other than .json, .yaml and .yml are ignored.
func LoadCollection(path string) ([]*domain.Recipe, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("recipe path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat recipes %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isRecipeFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk recipes %s: %w", path, err)
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	ids := make(map[string]bool)
	var out []*domain.Recipe
	for _, f := range files {
		recipes, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, r := range recipes {
			if id := uniqueID(ids, r.ID); id != r.ID {
				r.ID = id
				for i := range r.Steps {
					r.Steps[i].ID = fmt.Sprintf("%s-%d", id, i+1)
				}
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// LoadFile reads the recipes in a single document. A document holds
// either one recipe or a list of recipes.
func LoadFile(path string) ([]*domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe %s: %w", path, err)
	}

	docs, err := parseDocuments(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}

	out := make([]*domain.Recipe, 0, len(docs))
	for i, doc := range docs {
		r, err := doc.toRecipe(path)
		if err != nil {
			return nil, fmt.Errorf("recipe %s[%d]: %w", path, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func parseDocuments(data []byte, ext string) ([]document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch ext {
	case ".json":
		if trimmed[0] == '[' {
			var docs []document
			if err := json.Unmarshal(trimmed, &docs); err != nil {
				return nil, err
			}
			return docs, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return []document{doc}, nil

	case ".yaml", ".yml":
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var docs []document
			if err := node.Decode(&docs); err != nil {
				return nil, err
			}
			return docs, nil
		}
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return []document{doc}, nil
	}

	return nil, fmt.Errorf("unsupported recipe format %q", ext)
}

func (d document) toRecipe(path string) (*domain.Recipe, error) {
	name := strings.TrimSpace(d.Title)
	if name == "" {
		return nil, fmt.Errorf("title is required")
	}
	if d.Parameters.TotalBrewTimeSeconds < 0 {
		return nil, fmt.Errorf("total_brew_time_seconds is negative")
	}

	r := &domain.Recipe{
		ID:            Slug(name),
		Name:          name,
		Method:        strings.TrimSpace(d.BrewingMethod),
		Description:   strings.TrimSpace(d.Notes),
		Source:        path,
		DeclaredTotal: time.Duration(d.Parameters.TotalBrewTimeSeconds) * time.Second,
		Tags:          d.Tags,
		Steps:         make([]domain.Step, 0, len(d.BrewingSteps)),
	}
	if d.WhatToExpect != nil {
		r.Intro = strings.TrimSpace(d.WhatToExpect.AudioScript)
		if r.Description == "" {
			r.Description = strings.TrimSpace(d.WhatToExpect.Description)
		}
	}

	for i, s := range d.BrewingSteps {
		if s.TimeSeconds < 0 {
			return nil, fmt.Errorf("step %d: time_seconds is negative (%d)", i+1, s.TimeSeconds)
		}
		r.Steps = append(r.Steps, domain.Step{
			ID:               fmt.Sprintf("%s-%d", r.ID, i+1),
			Order:            i + 1,
			Instruction:      strings.TrimSpace(s.Instruction),
			ShortInstruction: strings.TrimSpace(s.ShortInstruction),
			Duration:         time.Duration(s.TimeSeconds) * time.Second,
			Narration:        strings.TrimSpace(s.AudioScript),
		})
	}
	return r, nil
}

func isRecipeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a recipe title into an ID: "James Hoffmann V60" becomes
// "james-hoffmann-v60".
func Slug(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "recipe"
	}
	return s
}

// uniqueID returns id, or id with the first free numeric suffix when id
// is already taken, and marks the result as used.
func uniqueID(used map[string]bool, id string) string {
	candidate := id
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	used[candidate] = true
	return candidate
}

// FileSource serves recipes loaded from a collection path. The collection
// is read once at construction.
type FileSource struct {
	*MemorySource
	path string
}

// NewFileSource loads the collection at path.
func NewFileSource(path string, log *logger.Logger) (*FileSource, error) {
	recipes, err := LoadCollection(path)
	if err != nil {
		return nil, err
	}
	log.Info("loaded %d recipes from %s", len(recipes), path)
	return &FileSource{
		MemorySource: NewMemorySourceFrom(log, recipes),
		path:         path,
	}, nil
}

// Reload re-reads the collection, replacing every recipe.
func (s *FileSource) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipes, err := LoadCollection(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = make(map[string]*domain.Recipe, len(recipes))
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Info("reloaded %d recipes from %s", len(recipes), s.path)
	return nil
}
