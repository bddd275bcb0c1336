// Package mission loads the static mission catalog.
package mission

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Catalog is an immutable, validated set of missions
type Catalog struct {
	missions []domain.Mission
	byID     map[string]domain.Mission
}

// LoadCatalog reads and validates the catalog JSON at path
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission catalog: %w", err)
	}

	var cfg domain.MissionCatalogConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mission catalog: %w", err)
	}

	return NewCatalog(cfg.Missions)
}

// NewCatalog validates missions and builds a Catalog. Every difficulty tier
// needs at least one mission.
func NewCatalog(missions []domain.Mission) (*Catalog, error) {
	c := &Catalog{
		missions: make([]domain.Mission, 0, len(missions)),
		byID:     make(map[string]domain.Mission, len(missions)),
	}
	tiers := make(map[domain.Difficulty]int, len(domain.Difficulties))
	for _, m := range missions {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: mission without id", domain.ErrInvalidInput)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate mission id %q", domain.ErrInvalidInput, m.ID)
		}
		if !m.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: mission %q has unknown difficulty %q", domain.ErrInvalidInput, m.ID, m.Difficulty)
		}
		if !m.Category.Valid() {
			return nil, fmt.Errorf("%w: mission %q has unknown category %q", domain.ErrInvalidInput, m.ID, m.Category)
		}
		if m.BasePoints <= 0 || m.Co2SavedKg < 0 {
			return nil, fmt.Errorf("%w: mission %q needs positive base points and non-negative co2", domain.ErrInvalidInput, m.ID)
		}
		c.missions = append(c.missions, m)
		c.byID[m.ID] = m
		tiers[m.Difficulty]++
	}
	// the daily pool draws one mission from every tier
	for _, d := range domain.Difficulties {
		if tiers[d] == 0 {
			return nil, fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, domain.ErrEmptyDifficultyTier, d)
		}
	}
	return c, nil
}

// Get returns the mission with id or domain.ErrMissionNotFound
func (c *Catalog) Get(id string) (domain.Mission, error) {
	m, ok := c.byID[id]
	if !ok {
		return domain.Mission{}, fmt.Errorf("%w: %s", domain.ErrMissionNotFound, id)
	}
	return m, nil
}

// All returns the missions in catalog order
func (c *Catalog) All() []domain.Mission {
	out := make([]domain.Mission, len(c.missions))
	copy(out, c.missions)
	return out
}

// Len returns the number of missions
func (c *Catalog) Len() int {
	return len(c.missions)
}
