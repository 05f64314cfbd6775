// Package domain defines the core types and interfaces for the brew guide.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Recipe is a brewing procedure as loaded from a recipe source.
type Recipe struct {
	ID          string
	Name        string
	Method      string // "V60", "AeroPress", ...
	Description string
	Source      string // file path or "builtin"

	// Intro is the "what to expect" narration spoken before the clock
	// starts. It has no time budget of its own.
	Intro string

	// DeclaredTotal is the total brew time written in the document, 0 if
	// absent. It is informational only; the sum of step durations wins.
	DeclaredTotal time.Duration

	Steps   []Step
	Tags    []string
	Version int
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Method      string
	Description string
	Total       time.Duration
	Tags        []string
}

// Step is one timed instruction within a recipe.
type Step struct {
	ID               string
	Order            int // 1-based position in the recipe
	Instruction      string
	ShortInstruction string
	Duration         time.Duration // 0 marks an instantaneous step
	Narration        string        // spoken guidance, "" when absent
}

// ComputedTotal sums the recipe's step durations.
func (r *Recipe) ComputedTotal() time.Duration {
	var total time.Duration
	for _, s := range r.Steps {
		total += s.Duration
	}
	return total
}

// Summary returns the listing view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Method:      r.Method,
		Description: r.Description,
		Total:       r.ComputedTotal(),
		Tags:        r.Tags,
	}
}
