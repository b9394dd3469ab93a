package handlers

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/repository"
)

// TreeHandler serves the rooted tree projection of the current snapshot.
type TreeHandler struct {
	Repo repository.PersonRepositoryInterface
}

type treeResponse struct {
	Roots []*genealogy.TreeNode `json:"roots"`
	// Highlight carries ancestor/descendant id sets of the person named
	// in the highlight query param, for emphasis in the diagram.
	Highlight *highlightResponse `json:"highlight,omitempty"`
}

type highlightResponse struct {
	PersonID    uint   `json:"person_id"`
	Ancestors   []uint `json:"ancestors"`
	Descendants []uint `json:"descendants"`
}

// GetTree builds the tree forest for the snapshot. An optional root
// query param restricts the response to that person's subtree; an
// optional highlight param adds ancestor/descendant sets.
func (th *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	people, err := th.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing people for tree: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}
	snapshot := genealogy.NewSnapshot(people)

	var roots []*genealogy.TreeNode
	if rootParam := r.URL.Query().Get("root"); rootParam != "" {
		rootID, err := strconv.ParseUint(rootParam, 10, 32)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid root ID format"})
			return
		}
		tree, err := snapshot.BuildTree(uint(rootID))
		if err != nil {
			writeTreeError(w, err)
			return
		}
		roots = []*genealogy.TreeNode{tree}
	} else {
		forest, err := snapshot.BuildForest()
		if err != nil {
			writeTreeError(w, err)
			return
		}
		roots = forest
	}
	if roots == nil {
		roots = []*genealogy.TreeNode{}
	}

	resp := treeResponse{Roots: roots}
	if hlParam := r.URL.Query().Get("highlight"); hlParam != "" {
		hlID, err := strconv.ParseUint(hlParam, 10, 32)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid highlight ID format"})
			return
		}
		resp.Highlight = &highlightResponse{
			PersonID:    uint(hlID),
			Ancestors:   setToSlice(snapshot.Ancestors(uint(hlID))),
			Descendants: setToSlice(snapshot.Descendants(uint(hlID))),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeTreeError(w http.ResponseWriter, err error) {
	if errors.Is(err, genealogy.ErrCycleDetected) {
		log.Printf("Tree build refused: %v", err)
		WriteAPIError(w, http.StatusUnprocessableEntity, "cycle_detected",
			"The parent graph contains a cycle and cannot be rendered as a tree")
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
}

func setToSlice(set map[uint]bool) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
