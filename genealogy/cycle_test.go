package genealogy

import (
	"testing"

	"github.com/arbormap/lineagebackend/models"
)

func TestWouldCreateCycle(t *testing.T) {
	people := threeGenerations()

	tests := []struct {
		name     string
		subject  uint
		proposed uint
		want     bool
	}{
		{"self as parent", 3, 3, true},
		{"own child as parent", 3, 6, true},
		{"own grandchild as parent", 1, 6, true},
		{"existing parent again", 3, 1, false},
		{"unrelated person", 3, 5, false},
		{"sibling as parent", 3, 4, false},
		{"descendant chain through mother", 2, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(people)
			if got := WouldCreateCycle(s, tt.subject, tt.proposed); got != tt.want {
				t.Errorf("WouldCreateCycle(%d, %d) = %v, want %v", tt.subject, tt.proposed, got, tt.want)
			}
		})
	}
}

func TestWouldCreateCycleOnCorruptData(t *testing.T) {
	// pre-existing cycle between 1 and 2 must not hang the guard
	people := []models.Person{
		person(1, "A", father(2)),
		person(2, "B", father(1)),
		person(3, "C"),
	}
	s := NewSnapshot(people)
	if WouldCreateCycle(s, 3, 1) {
		t.Error("WouldCreateCycle(3, 1) = true, want false: 3 is not an ancestor of 1")
	}
	if !WouldCreateCycle(s, 1, 2) {
		t.Error("WouldCreateCycle(1, 2) = false, want true")
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name   string
		people []models.Person
		want   bool
	}{
		{"empty", nil, false},
		{"valid three generations", threeGenerations(), false},
		{
			"self loop",
			[]models.Person{person(1, "A", father(1))},
			true,
		},
		{
			"two node loop",
			[]models.Person{person(1, "A", mother(2)), person(2, "B", mother(1))},
			true,
		},
		{
			"loop deep in otherwise valid data",
			append(threeGenerations(), person(7, "G", father(8)), person(8, "H", father(9)), person(9, "I", father(7))),
			true,
		},
		{
			"dangling reference is not a cycle",
			[]models.Person{person(1, "A", father(42))},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSnapshot(tt.people).HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}
