// Package recipe provides recipe source implementations.
package recipe

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	src.seed()
	return src
}

// NewMemorySourceFrom creates a recipe source holding exactly the given
// recipes.
func NewMemorySourceFrom(log *logger.Logger, recipes []*domain.Recipe) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe, len(recipes)),
		log:     log,
	}
	for _, r := range recipes {
		src.recipes[r.ID] = r
	}
	return src
}

// List returns summaries of all available recipes.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// All returns every recipe, sorted by ID.
func (s *MemorySource) All() []*domain.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update replaces a recipe in the source. The recipe ID must already exist.
func (s *MemorySource) Update(ctx context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[recipe.ID]; !ok {
		return domain.ErrNotFound
	}
	recipe.Version++
	s.recipes[recipe.ID] = recipe
	s.log.Info("recipe updated: %s (v%d)", recipe.Name, recipe.Version)
	return nil
}

// Search returns recipes whose name, method, description or tags contain
// the query string.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	s.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, r := range s.recipes {
		if matches(r, q) {
			out = append(out, r.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matches(r *domain.Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Method), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.Recipe{
		classicV60(),
		invertedAeroPress(),
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}

func sec(n int) time.Duration { return time.Duration(n) * time.Second }

func classicV60() *domain.Recipe {
	return &domain.Recipe{
		ID:            "classic-v60",
		Name:          "Classic V60",
		Method:        "V60",
		Description:   "A balanced 20g to 340g pour-over with a swirled bloom and two main pours.",
		Source:        "builtin",
		Intro:         "This classic V60 takes under three minutes. You will bloom, pour twice, swirl, and let it drain.",
		DeclaredTotal: sec(160),
		Tags:          []string{"pour-over", "filter", "beginner"},
		Steps: []domain.Step{
			{
				ID:               "v60-1",
				Order:            1,
				Instruction:      "Pour 60g of water to bloom, center first, then spiral out.",
				ShortInstruction: "Bloom: 60g",
				Duration:         sec(15),
				Narration:        "You have 15 seconds to bloom. Pour 60 grams of water in the center, then spiral outward until every ground is wet. Keep the stream gentle and low.",
			},
			{
				ID:               "v60-2",
				Order:            2,
				Instruction:      "Swirl once and let the bed bloom.",
				ShortInstruction: "Swirl and wait",
				Duration:         sec(30),
				Narration:        "Now wait 30 seconds while the coffee blooms. Give the brewer one gentle swirl so the slurry is even. You should see bubbles rising as the grounds release their gas. Fresh coffee puffs up more, so do not worry if the bed rises and cracks a little.",
			},
			{
				ID:               "v60-3",
				Order:            3,
				Instruction:      "Pour in slow circles up to 200g.",
				ShortInstruction: "Pour to 200g",
				Duration:         sec(30),
				Narration:        "You have 30 seconds to pour up to 200 grams. Pour in slow, steady circles, staying away from the paper. Keep the kettle spout close to the water so the stream stays calm, and aim to finish the pour just as this step ends.",
			},
			{
				ID:               "v60-4",
				Order:            4,
				Instruction:      "Continue pouring up to 340g.",
				ShortInstruction: "Pour to 340g",
				Duration:         sec(30),
				Narration:        "You have 30 seconds to bring the total to 340 grams. Keep the same slow circles and a steady rate. The water level should sit just below the rim. Do not rush this pour, an even stream gives an even extraction.",
			},
			{
				ID:               "v60-5",
				Order:            5,
				Instruction:      "Give the brewer a gentle swirl to flatten the bed.",
				ShortInstruction: "Swirl",
				Duration:         sec(10),
				Narration:        "Take 10 seconds to give the brewer a gentle swirl so the bed settles flat.",
			},
			{
				ID:               "v60-6",
				Order:            6,
				Instruction:      "Let the coffee draw down completely.",
				ShortInstruction: "Drawdown",
				Duration:         sec(45),
				Narration:        "Now wait 45 seconds for the drawdown. Leave the brewer alone and let gravity do the work. The bed should finish flat, with no grounds stuck high on the walls. When the water has drained through, your coffee is ready.",
			},
		},
	}
}

func invertedAeroPress() *domain.Recipe {
	return &domain.Recipe{
		ID:            "inverted-aeropress",
		Name:          "Inverted AeroPress",
		Method:        "AeroPress",
		Description:   "A full-bodied inverted brew: one pour, a minute of steeping, and a slow press.",
		Source:        "builtin",
		Intro:         "This inverted AeroPress brew takes about two and a half minutes from first pour to press.",
		DeclaredTotal: sec(145),
		Tags:          []string{"immersion", "inverted", "intermediate"},
		Steps: []domain.Step{
			{
				ID:               "aero-1",
				Order:            1,
				Instruction:      "Pour 250g of water over the grounds.",
				ShortInstruction: "Pour 250g",
				Duration:         sec(20),
				Narration:        "You have 20 seconds to pour 250 grams of water over the grounds. Fill steadily and make sure every bit of coffee is soaked before you stop.",
			},
			{
				ID:               "aero-2",
				Order:            2,
				Instruction:      "Stir three times and fit the cap with a rinsed filter.",
				ShortInstruction: "Stir and cap",
				Duration:         sec(15),
				Narration:        "Take 15 seconds to stir the slurry back and forth three times, then fit the cap with the rinsed filter.",
			},
			{
				ID:               "aero-3",
				Order:            3,
				Instruction:      "Let the coffee steep.",
				ShortInstruction: "Steep",
				Duration:         sec(60),
				Narration:        "Now wait 60 seconds while the coffee steeps. Keep the brewer steady on the counter. This is a good moment to warm your mug with a little hot water and then pour it out. The longer steep builds body, so resist the urge to stir again. When the minute is nearly up, get your mug ready underneath.",
			},
			{
				ID:               "aero-4",
				Order:            4,
				Instruction:      "Flip the AeroPress onto your mug.",
				ShortInstruction: "Flip",
				Duration:         sec(20),
				Narration:        "You have 20 seconds to flip the AeroPress onto your mug. Hold the chamber and the plunger together and turn them in one smooth motion.",
			},
			{
				ID:               "aero-5",
				Order:            5,
				Instruction:      "Start pressing.",
				ShortInstruction: "Press",
			},
			{
				ID:               "aero-6",
				Order:            6,
				Instruction:      "Press slowly until you hear a hiss.",
				ShortInstruction: "Press slowly",
				Duration:         sec(30),
				Narration:        "You have 30 seconds to press. Push down slowly and evenly with steady pressure. Stop as soon as you hear a hiss, since pressing further pulls bitter flavors into the cup.",
			},
		},
	}
}
