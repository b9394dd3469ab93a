package genealogy

// WouldCreateCycle reports whether assigning parentID as the father or
// mother of subjectID would make subjectID its own ancestor. It walks
// upward from the proposed parent breadth-first; the moment the subject
// is encountered the assignment is known to be cyclic. Must be consulted
// before persisting any change to a father/mother reference.
func WouldCreateCycle(s *Snapshot, subjectID, parentID uint) bool {
	if subjectID == parentID {
		return true
	}
	visited := make(map[uint]bool)
	queue := []uint{parentID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == subjectID {
			return true
		}
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
	return false
}

// HasCycle reports whether the snapshot's parent graph already contains a
// cycle somewhere. Used by the tree builder to fail fast on corrupt data
// instead of looping. Iterative DFS with three-color marking over the
// parent edges.
func (s *Snapshot) HasCycle() bool {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[uint]int, len(s.people))

	for i := range s.people {
		start := s.people[i].ID
		if color[start] != white {
			continue
		}
		// stack of (node, next-parent-index)
		type frame struct {
			id   uint
			next int
		}
		stack := []frame{{id: start}}
		color[start] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			parents := s.Parents(top.id)
			if top.next < len(parents) {
				parent := parents[top.next]
				top.next++
				switch color[parent.ID] {
				case grey:
					return true
				case white:
					color[parent.ID] = grey
					stack = append(stack, frame{id: parent.ID})
				}
				continue
			}
			color[top.id] = black
			stack = stack[:len(stack)-1]
		}
	}
	return false
}
