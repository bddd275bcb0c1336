package badge

import "github.com/osse101/EcoRewards_Go/internal/domain"

// Evaluator checks a catalog against snapshots
type Evaluator struct {
	catalog []Entry
	names   map[string]string
}

// NewEvaluator builds an evaluator over catalog; a nil catalog uses DefaultCatalog
func NewEvaluator(catalog []Entry) *Evaluator {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	names := make(map[string]string, len(catalog)+len(rewardBadgeNames))
	for id, name := range rewardBadgeNames {
		names[id] = name
	}
	for _, e := range catalog {
		names[e.ID] = e.Name
	}
	return &Evaluator{catalog: catalog, names: names}
}

// NewlyEarned returns the ids, in catalog order, whose predicate holds for
// snapshot and which are not already owned.
func (e *Evaluator) NewlyEarned(snapshot domain.StatSnapshot, owned map[string]bool) []string {
	var earned []string
	for _, entry := range e.catalog {
		if owned[entry.ID] {
			continue
		}
		if entry.Predicate(snapshot) {
			earned = append(earned, entry.ID)
		}
	}
	return earned
}

// Name returns the display name for a badge id, falling back to the id
func (e *Evaluator) Name(id string) string {
	if name, ok := e.names[id]; ok {
		return name
	}
	return id
}
