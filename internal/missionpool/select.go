package missionpool

import (
	"fmt"
	"hash/fnv"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// PreferredCategory derives today's focus category. Same-day signals win over
// the stored dominant category; historical is used when neither applies.
func PreferredCategory(sig *domain.DailySignal, historical domain.Category) domain.Category {
	if sig != nil {
		switch {
		case sig.CarDistanceKm > CarDistanceThresholdKm:
			return domain.CategoryTransport
		case sig.NonVegMeal:
			return domain.CategoryFood
		case sig.ApplianceHours > ApplianceHoursThreshold:
			return domain.CategoryEnergy
		case sig.DominantCategory.Valid():
			return sig.DominantCategory
		}
	}
	return historical
}

// DominantCategory returns the most frequent category among the given mission
// ids; ties go to the category seen first. Unknown ids are ignored.
func DominantCategory(byID map[string]domain.Mission, ids []string) domain.Category {
	counts := make(map[domain.Category]int)
	var order []domain.Category
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		if counts[m.Category] == 0 {
			order = append(order, m.Category)
		}
		counts[m.Category]++
	}

	var best domain.Category
	for _, c := range order {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// Select picks one mission per difficulty tier, ordered easy, medium, hard.
// Within a tier it prefers preferred-category missions not in recent, then any
// preferred-category mission, then any mission of the tier. The pick among the
// candidates is stable for a given seed.
func Select(catalog []domain.Mission, preferred domain.Category, recent map[string]bool, seed string) ([]domain.Mission, error) {
	pool := make([]domain.Mission, 0, len(domain.Difficulties))
	for _, tier := range domain.Difficulties {
		var fresh, inCategory, inTier []domain.Mission
		for _, m := range catalog {
			if m.Difficulty != tier {
				continue
			}
			inTier = append(inTier, m)
			if preferred == "" || m.Category != preferred {
				continue
			}
			inCategory = append(inCategory, m)
			if !recent[m.ID] {
				fresh = append(fresh, m)
			}
		}

		candidates := fresh
		if len(candidates) == 0 {
			candidates = inCategory
		}
		if len(candidates) == 0 {
			candidates = inTier
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDifficultyTier, tier)
		}
		pool = append(pool, candidates[pick(seed, tier, len(candidates))])
	}
	return pool, nil
}

func pick(seed string, tier domain.Difficulty, n int) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(tier))
	return int(h.Sum64() % uint64(n))
}
