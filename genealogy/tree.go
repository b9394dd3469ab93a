package genealogy

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is returned by the tree builder when the parent graph
// contains a cycle that should have been rejected at write time.
var ErrCycleDetected = errors.New("genealogy: cycle detected in parent graph")

// TreeNode is one node of the rooted multi-way tree projection handed to
// layout code. It references the snapshot's person records read-only.
type TreeNode struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Gender    string      `json:"gender"`
	BirthYear *int        `json:"birth_year"`
	DeathYear *int        `json:"death_year"`
	Children  []*TreeNode `json:"children,omitempty"`
}

// Root selects the tree root: the oldest person with no recorded parents,
// falling back to the earliest-born person when every record has at least
// one parent link. Returns false only for an empty snapshot.
func (s *Snapshot) Root() (uint, bool) {
	var root *int // index into s.people
	better := func(candidate, incumbent int) bool {
		cb, ib := s.people[candidate].BirthYear, s.people[incumbent].BirthYear
		switch {
		case cb != nil && ib != nil && *cb != *ib:
			return *cb < *ib
		case cb != nil && ib == nil:
			return true
		case cb == nil && ib != nil:
			return false
		}
		return s.people[candidate].CreatedAt < s.people[incumbent].CreatedAt
	}

	for i := range s.people {
		if len(s.Parents(s.people[i].ID)) != 0 {
			continue
		}
		if root == nil || better(i, *root) {
			idx := i
			root = &idx
		}
	}
	if root == nil {
		// no parentless person exists; fall back to the earliest born
		for i := range s.people {
			if root == nil || better(i, *root) {
				idx := i
				root = &idx
			}
		}
	}
	if root == nil {
		return 0, false
	}
	return s.people[*root].ID, true
}

// BuildTree builds the rooted descendant tree for the given root id using
// an explicit worklist and visited set, so corrupt input fails with
// ErrCycleDetected instead of recursing without bound. Every person
// reachable from the root appears exactly once: a child with both parents
// in the tree is attached only under the parent encountered first.
func (s *Snapshot) BuildTree(rootID uint) (*TreeNode, error) {
	if _, ok := s.Person(rootID); !ok {
		return nil, fmt.Errorf("genealogy: unknown root person %d", rootID)
	}
	if s.HasCycle() {
		return nil, ErrCycleDetected
	}

	root := s.newNode(rootID)
	visited := map[uint]bool{rootID: true}
	queue := []*TreeNode{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, child := range s.Children(node.ID) {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			childNode := s.newNode(child.ID)
			node.Children = append(node.Children, childNode)
			queue = append(queue, childNode)
		}
	}
	return root, nil
}

// BuildForest builds trees for every root in the snapshot (multiple roots
// are allowed), primary root first. Persons unreachable from any
// parentless person, short of a cycle, end up in a later tree; across the
// whole forest each person appears exactly once.
func (s *Snapshot) BuildForest() ([]*TreeNode, error) {
	if len(s.people) == 0 {
		return nil, nil
	}
	if s.HasCycle() {
		return nil, ErrCycleDetected
	}

	primary, _ := s.Root()
	var roots []uint
	roots = append(roots, primary)
	for i := range s.people {
		id := s.people[i].ID
		if id != primary && len(s.Parents(id)) == 0 {
			roots = append(roots, id)
		}
	}

	var forest []*TreeNode
	visited := make(map[uint]bool, len(s.people))
	for _, rootID := range roots {
		if visited[rootID] {
			continue
		}
		visited[rootID] = true
		root := s.newNode(rootID)
		forest = append(forest, root)
		queue := []*TreeNode{root}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, child := range s.Children(node.ID) {
				if visited[child.ID] {
					continue
				}
				visited[child.ID] = true
				childNode := s.newNode(child.ID)
				node.Children = append(node.Children, childNode)
				queue = append(queue, childNode)
			}
		}
	}
	return forest, nil
}

func (s *Snapshot) newNode(id uint) *TreeNode {
	p := s.byID[id]
	return &TreeNode{
		ID:        p.ID,
		Name:      p.Name,
		Gender:    p.Gender,
		BirthYear: p.BirthYear,
		DeathYear: p.DeathYear,
	}
}
