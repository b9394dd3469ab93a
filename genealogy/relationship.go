package genealogy

import (
	"fmt"
	"strings"

	"github.com/arbormap/lineagebackend/models"
)

// Relationship describes how the second person handed to Classify relates
// to the first, derived from their nearest common ancestor rather than a
// fixed list of special cases, so valid relationships at arbitrary depth
// (great-great-grandparents, third cousins twice removed) get a real label
// instead of a generic fallback.
type Relationship struct {
	// Label is the natural-language name of the relation of "to" with
	// respect to "from", e.g. "Grandmother", "First Cousin Once Removed".
	Label string `json:"label"`
	// CommonAncestorID is the nearest shared ancestor, when one exists
	// and neither person is an ancestor of the other.
	CommonAncestorID *uint `json:"common_ancestor_id,omitempty"`
	// FromDistance / ToDistance are the parent-hop counts from each
	// person up to the nearest common ancestor (0 means the person is
	// the ancestor).
	FromDistance int `json:"from_distance"`
	ToDistance   int `json:"to_distance"`
	// Related is false when the two parent graphs share no ancestor.
	Related bool `json:"related"`
}

const labelNoRelation = "No blood relation found"

// Classify computes the relationship of person toID relative to person
// fromID over the parent graph. Pure query; symmetric up to direction
// swap (Parent vs Child, Aunt vs Niece).
func (s *Snapshot) Classify(fromID, toID uint) (Relationship, error) {
	from, ok := s.Person(fromID)
	if !ok {
		return Relationship{}, fmt.Errorf("genealogy: unknown person %d", fromID)
	}
	to, ok := s.Person(toID)
	if !ok {
		return Relationship{}, fmt.Errorf("genealogy: unknown person %d", toID)
	}

	if fromID == toID {
		return Relationship{Label: "Self", Related: true}, nil
	}

	fromDepths := s.ancestorDepths(fromID)
	toDepths := s.ancestorDepths(toID)

	// nearest common ancestor: minimize total hops, then the larger leg
	var (
		found    bool
		ancestor uint
		df, dt   int
	)
	for id, a := range fromDepths {
		b, shared := toDepths[id]
		if !shared {
			continue
		}
		if !found || a+b < df+dt || (a+b == df+dt && maxInt(a, b) < maxInt(df, dt)) {
			found, ancestor, df, dt = true, id, a, b
		}
	}
	if !found {
		return Relationship{Label: labelNoRelation}, nil
	}

	rel := Relationship{FromDistance: df, ToDistance: dt, Related: true}
	if df > 0 && dt > 0 {
		a := ancestor
		rel.CommonAncestorID = &a
	}
	rel.Label = s.relationLabel(from, to, df, dt)
	return rel, nil
}

// relationLabel derives the label for "to" relative to "from" from the
// two leg lengths up to the nearest common ancestor.
func (s *Snapshot) relationLabel(from, to *models.Person, df, dt int) string {
	switch {
	case dt == 0:
		// "to" is an ancestor of "from"
		return greatPrefix(df-2) + byGender(to, "Grandfather", "Grandmother", "Grandparent", "Father", "Mother", "Parent", df)
	case df == 0:
		// "to" is a descendant of "from"
		return greatPrefix(dt-2) + byGender(to, "Grandson", "Granddaughter", "Grandchild", "Son", "Daughter", "Child", dt)
	case df == 1 && dt == 1:
		if s.fullSiblings(from, to) {
			return "Full Sibling"
		}
		return "Half Sibling"
	case dt == 1:
		// "to" is a child of the common ancestor, "from" is deeper
		return greatPrefix(df-2) + pickGender(to, "Uncle", "Aunt", "Aunt/Uncle")
	case df == 1:
		return greatPrefix(dt-2) + pickGender(to, "Nephew", "Niece", "Niece/Nephew")
	default:
		degree := minInt(df, dt) - 1
		removed := df - dt
		if removed < 0 {
			removed = -removed
		}
		label := ordinal(degree) + " Cousin"
		if removed > 0 {
			label += " " + timesRemoved(removed)
		}
		return label
	}
}

// fullSiblings reports whether both recorded parents match and resolve to
// a live record; a single shared parent makes a half sibling. Dangling or
// missing references never count as a match.
func (s *Snapshot) fullSiblings(a, b *models.Person) bool {
	return s.sameResolvedParent(a.FatherID, b.FatherID) && s.sameResolvedParent(a.MotherID, b.MotherID)
}

func (s *Snapshot) sameResolvedParent(a, b *uint) bool {
	if a == nil || b == nil || *a != *b {
		return false
	}
	_, ok := s.byID[*a]
	return ok
}

func byGender(p *models.Person, grandM, grandF, grandU, directM, directF, directU string, dist int) string {
	if dist == 1 {
		return pickGender(p, directM, directF, directU)
	}
	return pickGender(p, grandM, grandF, grandU)
}

func pickGender(p *models.Person, male, female, unknown string) string {
	switch p.Gender {
	case models.GenderMale:
		return male
	case models.GenderFemale:
		return female
	}
	return unknown
}

func greatPrefix(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("Great-", n)
}

var ordinals = []string{"", "First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth", "Tenth"}

func ordinal(n int) string {
	if n > 0 && n < len(ordinals) {
		return ordinals[n]
	}
	return fmt.Sprintf("%dth", n)
}

func timesRemoved(n int) string {
	switch n {
	case 1:
		return "Once Removed"
	case 2:
		return "Twice Removed"
	default:
		return fmt.Sprintf("%d Times Removed", n)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
