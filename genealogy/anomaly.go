package genealogy

import (
	"fmt"
	"strings"

	"github.com/arbormap/lineagebackend/models"
)

// Severity tags an anomaly as a definite data defect or a statistically
// implausible but possible fact.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Anomaly codes emitted by the scanner.
const (
	CodeDeathBeforeBirth    = "death_before_birth"
	CodeImplausibleLifespan = "implausible_lifespan"
	CodeMissingDeathYear    = "missing_death_year"
	CodeParentBornAfter     = "parent_born_after_child"
	CodeParentTooYoung      = "parent_too_young"
	CodeMotherTooOld        = "mother_too_old"
	CodeDuplicateRecord     = "duplicate_record"
)

// Plausibility thresholds. Deliberately fixed rather than configurable;
// the scanner classifies snapshots deterministically.
const (
	MaxPlausibleLifespan = 120
	PresumedDeceasedAge  = 110
	MinParentingAge      = 12
	MaxMaternalAge       = 60
)

// Anomaly is one flagged data-quality issue on a person record.
type Anomaly struct {
	PersonID   uint     `json:"person_id"`
	PersonName string   `json:"person_name"`
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	// RelatedID points at the other record involved (the parent for
	// age-gap checks, a duplicate peer for duplicate groups).
	RelatedID *uint `json:"related_id,omitempty"`
}

// ScanAnomalies runs the per-person date-logic and parent-age checks over
// the snapshot. currentYear anchors the "alive but implausibly old"
// check; callers pass time.Now().Year().
func (s *Snapshot) ScanAnomalies(currentYear int) []Anomaly {
	anomalies := []Anomaly{}
	for i := range s.people {
		p := &s.people[i]

		if p.BirthYear != nil && p.DeathYear != nil {
			if *p.DeathYear < *p.BirthYear {
				anomalies = append(anomalies, Anomaly{
					PersonID:   p.ID,
					PersonName: p.Name,
					Severity:   SeverityError,
					Code:       CodeDeathBeforeBirth,
					Message:    fmt.Sprintf("death year %d precedes birth year %d", *p.DeathYear, *p.BirthYear),
				})
			} else if *p.DeathYear-*p.BirthYear > MaxPlausibleLifespan {
				anomalies = append(anomalies, Anomaly{
					PersonID:   p.ID,
					PersonName: p.Name,
					Severity:   SeverityWarning,
					Code:       CodeImplausibleLifespan,
					Message:    fmt.Sprintf("lifespan of %d years exceeds %d", *p.DeathYear-*p.BirthYear, MaxPlausibleLifespan),
				})
			}
		}

		if p.BirthYear != nil && p.DeathYear == nil && currentYear-*p.BirthYear > PresumedDeceasedAge {
			anomalies = append(anomalies, Anomaly{
				PersonID:   p.ID,
				PersonName: p.Name,
				Severity:   SeverityWarning,
				Code:       CodeMissingDeathYear,
				Message:    fmt.Sprintf("born %d with no recorded death; would be %d years old", *p.BirthYear, currentYear-*p.BirthYear),
			})
		}

		anomalies = append(anomalies, s.scanParentGap(p, p.FatherID, false)...)
		anomalies = append(anomalies, s.scanParentGap(p, p.MotherID, true)...)
	}
	return anomalies
}

// scanParentGap checks the age gap between a child and one recorded
// parent. A parent not born strictly before the child is a definite
// defect; a biologically implausible gap is a warning.
func (s *Snapshot) scanParentGap(child *models.Person, parentID *uint, maternal bool) []Anomaly {
	if parentID == nil || child.BirthYear == nil {
		return nil
	}
	parent, ok := s.byID[*parentID]
	if !ok || parent.BirthYear == nil {
		// dangling reference or unknown birth year: treated as unrecorded
		return nil
	}

	gap := *child.BirthYear - *parent.BirthYear
	if gap <= 0 {
		return []Anomaly{{
			PersonID:   child.ID,
			PersonName: child.Name,
			Severity:   SeverityError,
			Code:       CodeParentBornAfter,
			Message:    fmt.Sprintf("parent %s (born %d) is not older than child (born %d)", parent.Name, *parent.BirthYear, *child.BirthYear),
			RelatedID:  &parent.ID,
		}}
	}

	var out []Anomaly
	if gap < MinParentingAge {
		out = append(out, Anomaly{
			PersonID:   child.ID,
			PersonName: child.Name,
			Severity:   SeverityWarning,
			Code:       CodeParentTooYoung,
			Message:    fmt.Sprintf("parent %s was only %d at child's birth", parent.Name, gap),
			RelatedID:  &parent.ID,
		})
	}
	if maternal && gap > MaxMaternalAge {
		out = append(out, Anomaly{
			PersonID:   child.ID,
			PersonName: child.Name,
			Severity:   SeverityWarning,
			Code:       CodeMotherTooOld,
			Message:    fmt.Sprintf("mother %s was %d at child's birth", parent.Name, gap),
			RelatedID:  &parent.ID,
		})
	}
	return out
}

// DuplicateGroup is a set of person ids sharing a normalized name and
// birth year.
type DuplicateGroup struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	PersonIDs []uint `json:"person_ids"`
}

// FindDuplicates buckets persons by normalized name plus birth year and
// reports every bucket with more than one member. Exact-match only; a
// misspelled name or a birth year off by one is a different bucket.
func (s *Snapshot) FindDuplicates() []DuplicateGroup {
	type bucket struct {
		name string
		year *int
		ids  []uint
	}
	buckets := make(map[string]*bucket)
	var order []string

	for i := range s.people {
		p := &s.people[i]
		key := normalizeName(p.Name)
		if p.BirthYear != nil {
			key += fmt.Sprintf("|%d", *p.BirthYear)
		} else {
			key += "|?"
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: normalizeName(p.Name), year: p.BirthYear}
			buckets[key] = b
			order = append(order, key)
		}
		b.ids = append(b.ids, p.ID)
	}

	groups := []DuplicateGroup{}
	for _, key := range order {
		b := buckets[key]
		if len(b.ids) > 1 {
			groups = append(groups, DuplicateGroup{Name: b.name, BirthYear: b.year, PersonIDs: b.ids})
		}
	}
	return groups
}

// normalizeName lower-cases and collapses interior whitespace so casing
// and spacing differences still bucket together.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
