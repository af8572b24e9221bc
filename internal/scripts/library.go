// Package scripts serves read-aloud practice scripts by difficulty and category.
package scripts

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/speechcoach/backend/internal/models"
)

//go:embed scripts.toml
var defaultScripts []byte

type libraryFile struct {
	Difficulty []struct {
		Name     string `toml:"name"`
		Category []struct {
			Name    string   `toml:"name"`
			Scripts []string `toml:"scripts"`
		} `toml:"category"`
	} `toml:"difficulty"`
}

type category struct {
	name    string
	scripts []string
}

// Library is an immutable set of scripts. Random is safe for concurrent use.
type Library struct {
	order  []string
	levels map[string][]category

	mu  sync.Mutex
	rng *rand.Rand
}

// Load parses the embedded script set.
func Load() (*Library, error) {
	return Parse(defaultScripts, nil)
}

// Parse decodes a TOML script set. A nil rng seeds one randomly.
func Parse(data []byte, rng *rand.Rand) (*Library, error) {
	var f libraryFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode scripts: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lib := &Library{levels: make(map[string][]category), rng: rng}
	for _, d := range f.Difficulty {
		if _, dup := lib.levels[d.Name]; dup {
			return nil, fmt.Errorf("duplicate difficulty %q", d.Name)
		}
		var cats []category
		for _, c := range d.Category {
			if len(c.Scripts) == 0 {
				return nil, fmt.Errorf("difficulty %q category %q has no scripts", d.Name, c.Name)
			}
			cats = append(cats, category{name: c.Name, scripts: c.Scripts})
		}
		if len(cats) == 0 {
			return nil, fmt.Errorf("difficulty %q has no categories", d.Name)
		}
		lib.order = append(lib.order, d.Name)
		lib.levels[d.Name] = cats
	}
	if _, ok := lib.levels[models.DifficultyBeginner]; !ok {
		return nil, fmt.Errorf("missing %q difficulty", models.DifficultyBeginner)
	}
	return lib, nil
}

// Random picks a script. Unknown difficulties fall back to beginner; an unknown or empty
// category picks a random category of that difficulty.
func (l *Library) Random(difficulty, cat string) models.PracticeScript {
	cats, ok := l.levels[difficulty]
	if !ok {
		difficulty = models.DifficultyBeginner
		cats = l.levels[difficulty]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	chosen := -1
	for i, c := range cats {
		if cat != "" && c.name == cat {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		chosen = l.rng.IntN(len(cats))
	}
	c := cats[chosen]
	text := c.scripts[l.rng.IntN(len(c.scripts))]
	return models.PracticeScript{
		Text:       text,
		Difficulty: difficulty,
		Category:   c.name,
		WordCount:  len(strings.Fields(text)),
	}
}

// All returns every script keyed by difficulty then category.
func (l *Library) All() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(l.levels))
	for name, cats := range l.levels {
		m := make(map[string][]string, len(cats))
		for _, c := range cats {
			m[c.name] = append([]string(nil), c.scripts...)
		}
		out[name] = m
	}
	return out
}

// Difficulties returns difficulty names in file order.
func (l *Library) Difficulties() []string {
	return append([]string(nil), l.order...)
}

// Categories lists the categories of a difficulty in file order; unknown difficulties yield an empty list.
func (l *Library) Categories(difficulty string) []string {
	cats := l.levels[difficulty]
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.name)
	}
	return out
}
