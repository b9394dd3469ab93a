// Package genealogy holds the pure graph computations over a snapshot of
// the person list: cycle guarding, tree building, relationship
// classification, anomaly scanning, and aggregate statistics. Nothing in
// this package touches the database or carries state between calls; every
// function is recomputed from the snapshot it is given.
package genealogy

import (
	"sort"

	"github.com/arbormap/lineagebackend/models"
)

// Snapshot indexes a flat person list for graph traversal. Parent links
// pointing at ids missing from the list (deleted persons) are simply never
// resolved, which makes them behave as unrecorded everywhere.
type Snapshot struct {
	people   []models.Person
	byID     map[uint]*models.Person
	children map[uint][]*models.Person
}

// NewSnapshot builds the lookup indexes for the given person list. The
// list itself is never mutated.
func NewSnapshot(people []models.Person) *Snapshot {
	s := &Snapshot{
		people:   people,
		byID:     make(map[uint]*models.Person, len(people)),
		children: make(map[uint][]*models.Person),
	}
	for i := range people {
		p := &people[i]
		s.byID[p.ID] = p
	}
	for i := range people {
		p := &people[i]
		if p.FatherID != nil {
			s.children[*p.FatherID] = append(s.children[*p.FatherID], p)
		}
		if p.MotherID != nil && (p.FatherID == nil || *p.MotherID != *p.FatherID) {
			s.children[*p.MotherID] = append(s.children[*p.MotherID], p)
		}
	}
	// stable child ordering: birth year first, creation time as tiebreak
	for id := range s.children {
		kids := s.children[id]
		sort.SliceStable(kids, func(a, b int) bool {
			ya, yb := kids[a].BirthYear, kids[b].BirthYear
			switch {
			case ya != nil && yb != nil && *ya != *yb:
				return *ya < *yb
			case ya != nil && yb == nil:
				return true
			case ya == nil && yb != nil:
				return false
			}
			return kids[a].CreatedAt < kids[b].CreatedAt
		})
	}
	return s
}

// Person returns the person with the given id, if present in the snapshot.
func (s *Snapshot) Person(id uint) (*models.Person, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// People returns the underlying person list.
func (s *Snapshot) People() []models.Person {
	return s.people
}

// Parents returns the recorded, resolvable parents of the given person
// (zero, one, or two entries). Dangling references are skipped.
func (s *Snapshot) Parents(id uint) []*models.Person {
	p, ok := s.byID[id]
	if !ok {
		return nil
	}
	var parents []*models.Person
	if p.FatherID != nil {
		if father, ok := s.byID[*p.FatherID]; ok {
			parents = append(parents, father)
		}
	}
	if p.MotherID != nil {
		if mother, ok := s.byID[*p.MotherID]; ok {
			parents = append(parents, mother)
		}
	}
	return parents
}

// Children returns the persons whose father or mother id matches the
// given id, in stable order.
func (s *Snapshot) Children(id uint) []*models.Person {
	return s.children[id]
}

// Ancestors returns the set of ids reachable by following father/mother
// links upward from the given person, excluding the person itself. The
// visited set doubles as a guard against already-corrupt cyclic data.
func (s *Snapshot) Ancestors(id uint) map[uint]bool {
	visited := make(map[uint]bool)
	queue := make([]uint, 0, 8)
	for _, parent := range s.Parents(id) {
		queue = append(queue, parent.ID)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, parent := range s.Parents(cur) {
			if !visited[parent.ID] {
				queue = append(queue, parent.ID)
			}
		}
	}
	return visited
}

// Descendants returns the set of ids reachable by following child links
// downward from the given person, excluding the person itself.
func (s *Snapshot) Descendants(id uint) map[uint]bool {
	visited := make(map[uint]bool)
	queue := make([]uint, 0, 8)
	for _, child := range s.Children(id) {
		queue = append(queue, child.ID)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, child := range s.Children(cur) {
			if !visited[child.ID] {
				queue = append(queue, child.ID)
			}
		}
	}
	return visited
}

// ancestorDepths returns, for every ancestor of the given person
// (including the person itself at depth 0), the minimum number of
// parent hops needed to reach it.
func (s *Snapshot) ancestorDepths(id uint) map[uint]int {
	depths := map[uint]int{id: 0}
	queue := []uint{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, parent := range s.Parents(cur) {
			if _, seen := depths[parent.ID]; !seen {
				depths[parent.ID] = depths[cur] + 1
				queue = append(queue, parent.ID)
			}
		}
	}
	return depths
}
