package genealogy

import (
	"sort"
)

// DecadeLifespan is one bar of the lifespan-by-decade histogram: the
// average lifespan of persons born in that decade.
type DecadeLifespan struct {
	Decade          int     `json:"decade"` // e.g. 1850
	Count           int     `json:"count"`
	AverageLifespan float64 `json:"average_lifespan"`
}

// Statistics are the aggregates computed over one snapshot. Averages are
// nil when no record qualifies, never zero-filled.
type Statistics struct {
	TotalPeople  int            `json:"total_people"`
	GenderCounts map[string]int `json:"gender_counts"`
	// AverageLifespan covers persons with both a birth year and a valid
	// (not earlier) death year.
	AverageLifespan *float64 `json:"average_lifespan"`
	// LifespanByDecade is ordered by birth decade.
	LifespanByDecade []DecadeLifespan `json:"lifespan_by_decade"`
	// AverageParentChildGap is filtered to the plausible biological range
	// so bad data doesn't drag the mean.
	AverageParentChildGap *float64 `json:"average_parent_child_gap"`
}

// ComputeStatistics reduces the snapshot to aggregate counts. O(n) over
// persons plus O(n·parents) for the age-gap metric.
func (s *Snapshot) ComputeStatistics() Statistics {
	stats := Statistics{
		TotalPeople:      len(s.people),
		GenderCounts:     map[string]int{},
		LifespanByDecade: []DecadeLifespan{},
	}

	var lifespanSum, lifespanCount int
	decadeSums := map[int]int{}
	decadeCounts := map[int]int{}

	for i := range s.people {
		p := &s.people[i]
		stats.GenderCounts[p.Gender]++

		if p.BirthYear == nil || p.DeathYear == nil || *p.DeathYear < *p.BirthYear {
			continue
		}
		lifespan := *p.DeathYear - *p.BirthYear
		lifespanSum += lifespan
		lifespanCount++

		decade := (*p.BirthYear / 10) * 10
		decadeSums[decade] += lifespan
		decadeCounts[decade]++
	}

	if lifespanCount > 0 {
		avg := float64(lifespanSum) / float64(lifespanCount)
		stats.AverageLifespan = &avg
	}

	decades := make([]int, 0, len(decadeCounts))
	for decade := range decadeCounts {
		decades = append(decades, decade)
	}
	sort.Ints(decades)
	for _, decade := range decades {
		stats.LifespanByDecade = append(stats.LifespanByDecade, DecadeLifespan{
			Decade:          decade,
			Count:           decadeCounts[decade],
			AverageLifespan: float64(decadeSums[decade]) / float64(decadeCounts[decade]),
		})
	}

	var gapSum, gapCount int
	for i := range s.people {
		p := &s.people[i]
		if p.BirthYear == nil {
			continue
		}
		for _, parent := range s.Parents(p.ID) {
			if parent.BirthYear == nil {
				continue
			}
			gap := *p.BirthYear - *parent.BirthYear
			if gap >= MinParentingAge && gap <= MaxMaternalAge {
				gapSum += gap
				gapCount++
			}
		}
	}
	if gapCount > 0 {
		avg := float64(gapSum) / float64(gapCount)
		stats.AverageParentChildGap = &avg
	}

	return stats
}
