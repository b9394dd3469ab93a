package genealogy

import (
	"testing"

	"github.com/arbormap/lineagebackend/models"
)

// extendedFamily adds a fourth generation and a half-sibling branch to
// the base family so deeper labels are exercised:
//
//	1 Arthur + 2 Beth -> 3 Carl, 4 Dora
//	3 Carl + 5 Eve    -> 6 Finn
//	4 Dora            -> 7 Greta (father unrecorded)
//	6 Finn            -> 8 Hugo
//	8 Hugo            -> 9 Iris
//	3 Carl + 20 Wilma -> 21 Half (half sibling of Finn)
func extendedFamily() []models.Person {
	return append(threeGenerations(),
		person(7, "Greta", born(1962), mother(4), female),
		person(8, "Hugo", born(1990), father(6), male),
		person(9, "Iris", born(2020), father(8), female),
		person(20, "Wilma", born(1935), female),
		person(21, "Half", born(1965), father(3), mother(20)),
	)
}

func TestClassify(t *testing.T) {
	people := extendedFamily()

	tests := []struct {
		name string
		from uint
		to   uint
		want string
	}{
		{"self", 3, 3, "Self"},
		{"father", 3, 1, "Father"},
		{"mother", 3, 2, "Mother"},
		{"son", 1, 3, "Son"},
		{"grandmother", 6, 2, "Grandmother"},
		{"grandson", 2, 6, "Grandson"},
		{"great grandfather", 8, 1, "Great-Grandfather"},
		{"great great grandmother", 9, 2, "Great-Great-Grandmother"},
		{"great grandson", 1, 8, "Great-Grandson"},
		{"full sibling", 3, 4, "Full Sibling"},
		{"half sibling", 6, 21, "Half Sibling"},
		{"aunt", 6, 4, "Aunt"},
		{"nephew", 4, 6, "Nephew"},
		{"great uncle", 8, 4, "Great-Uncle"},
		{"first cousins", 6, 7, "First Cousin"},
		{"first cousin once removed", 8, 7, "First Cousin Once Removed"},
		{"no relation", 3, 20, labelNoRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(people)
			got, err := s.Classify(tt.from, tt.to)
			if err != nil {
				t.Fatalf("Classify(%d, %d) error: %v", tt.from, tt.to, err)
			}
			if got.Label != tt.want {
				t.Errorf("Classify(%d, %d) = %q, want %q", tt.from, tt.to, got.Label, tt.want)
			}
		})
	}
}

func TestClassifySymmetry(t *testing.T) {
	// classify(A,B) and classify(B,A) must describe the same underlying
	// relationship: identical leg lengths, swapped direction
	people := extendedFamily()
	s := NewSnapshot(people)

	pairs := [][2]uint{{3, 1}, {6, 2}, {6, 7}, {8, 7}, {4, 6}, {6, 21}}
	for _, pair := range pairs {
		ab, err := s.Classify(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Classify(%d, %d) error: %v", pair[0], pair[1], err)
		}
		ba, err := s.Classify(pair[1], pair[0])
		if err != nil {
			t.Fatalf("Classify(%d, %d) error: %v", pair[1], pair[0], err)
		}
		if ab.FromDistance != ba.ToDistance || ab.ToDistance != ba.FromDistance {
			t.Errorf("pair (%d,%d): distances (%d,%d) vs reversed (%d,%d)",
				pair[0], pair[1], ab.FromDistance, ab.ToDistance, ba.FromDistance, ba.ToDistance)
		}
		if ab.Related != ba.Related {
			t.Errorf("pair (%d,%d): related %v vs %v", pair[0], pair[1], ab.Related, ba.Related)
		}
	}
}

func TestClassifyUnknownPerson(t *testing.T) {
	s := NewSnapshot(threeGenerations())
	if _, err := s.Classify(1, 999); err == nil {
		t.Error("Classify with unknown person returned nil error")
	}
}

func TestClassifyCommonAncestor(t *testing.T) {
	s := NewSnapshot(extendedFamily())
	rel, err := s.Classify(6, 7)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if rel.CommonAncestorID == nil {
		t.Fatal("first cousins should report a common ancestor")
	}
	if got := *rel.CommonAncestorID; got != 1 && got != 2 {
		t.Errorf("common ancestor = %d, want grandparent 1 or 2", got)
	}
}

func TestClassifySiblingsWithDanglingFather(t *testing.T) {
	// both siblings still carry the id of a deleted father; the stale
	// reference reads as no father at all, leaving only the shared mother
	people := []models.Person{
		person(5, "Mona", born(1940), female),
		person(40, "Nils", born(1965), mother(5), father(99)),
		person(41, "Olga", born(1968), mother(5), father(99)),
	}
	s := NewSnapshot(people)

	rel, err := s.Classify(40, 41)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if rel.Label != "Half Sibling" {
		t.Errorf("Classify(40, 41) = %q, want %q", rel.Label, "Half Sibling")
	}
}

func TestClassifyDeeperCousins(t *testing.T) {
	// Judd is Finn's first cousin once removed; Judd and Hugo are second
	// cousins; their children Kara and Iris are third cousins
	people := append(extendedFamily(),
		person(30, "Judd", born(1992), mother(7), male),
		person(31, "Kara", born(2021), father(30), female),
	)
	s := NewSnapshot(people)

	rel, err := s.Classify(8, 30)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if rel.Label != "Second Cousin" {
		t.Errorf("Classify(8, 30) = %q, want %q", rel.Label, "Second Cousin")
	}

	rel, err = s.Classify(9, 31)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if rel.Label != "Third Cousin" {
		t.Errorf("Classify(9, 31) = %q, want %q", rel.Label, "Third Cousin")
	}
}
