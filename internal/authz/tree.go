package authz

import (
	"sort"
	"sync"
)

// Edge is one parent link in the school forest, as persisted.
type Edge struct {
	ID       uint
	ParentID *uint
}

type treeNode struct {
	id       uint
	parent   *uint
	children []uint
}

// Tree is an immutable snapshot of the school forest: an arena of nodes
// indexed by id with an explicit child list per node. Snapshots are
// cheap to traverse and safe to share across requests; all mutation
// happens in TreeStore by building a replacement snapshot.
type Tree struct {
	nodes map[uint]*treeNode
	roots []uint
}

// NewTree builds a snapshot from the persisted edge list. Edges whose
// parent id is unknown are treated as roots rather than dropped, so a
// dangling reference cannot make content unreachable. Cycles in the
// input are not rejected here; traversals carry a visited set and stop
// on repeats.
func NewTree(edges []Edge) *Tree {
	t := &Tree{nodes: make(map[uint]*treeNode, len(edges))}
	for _, e := range edges {
		t.nodes[e.ID] = &treeNode{id: e.ID, parent: e.ParentID}
	}
	for _, n := range t.nodes {
		if n.parent != nil {
			if p, ok := t.nodes[*n.parent]; ok {
				p.children = append(p.children, n.id)
				continue
			}
			n.parent = nil
		}
		t.roots = append(t.roots, n.id)
	}
	for _, n := range t.nodes {
		sort.Slice(n.children, func(i, j int) bool { return n.children[i] < n.children[j] })
	}
	sort.Slice(t.roots, func(i, j int) bool { return t.roots[i] < t.roots[j] })
	return t
}

// Contains reports whether the school id exists in this snapshot.
func (t *Tree) Contains(id uint) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of schools in the snapshot.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Parent returns the parent id of a school, if it has one.
func (t *Tree) Parent(id uint) (uint, bool) {
	n, ok := t.nodes[id]
	if !ok || n.parent == nil {
		return 0, false
	}
	return *n.parent, true
}

// Children returns the direct children of a school in stable order.
func (t *Tree) Children(id uint) []uint {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]uint, len(n.children))
	copy(out, n.children)
	return out
}

// Roots returns the root school ids in stable order.
func (t *Tree) Roots() []uint {
	out := make([]uint, len(t.roots))
	copy(out, t.roots)
	return out
}

// Descendants returns the ids of the school and all of its transitive
// descendants. A visited set guards the walk: if a malformed snapshot
// contains a cycle the walk fails with ErrCycle instead of spinning.
func (t *Tree) Descendants(id uint) (map[uint]struct{}, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, ErrUnknownSchool
	}
	visited := map[uint]struct{}{}
	queue := []uint{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := visited[cur]; seen {
			return nil, ErrCycle
		}
		visited[cur] = struct{}{}
		queue = append(queue, t.nodes[cur].children...)
	}
	return visited, nil
}

// Ancestors returns the chain from the forest root down to the school's
// direct parent, root first. The school itself is not included. Used to
// walk orphaned content up the hierarchy.
func (t *Tree) Ancestors(id uint) ([]uint, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrUnknownSchool
	}
	var chain []uint
	visited := map[uint]struct{}{id: {}}
	for n.parent != nil {
		pid := *n.parent
		if _, seen := visited[pid]; seen {
			return nil, ErrCycle
		}
		visited[pid] = struct{}{}
		chain = append(chain, pid)
		n = t.nodes[pid]
	}
	// reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// CanReparent reports whether the school may be moved under newParent.
// Moving a school under itself or under any of its own descendants
// would create a cycle and is rejected. Unknown ids and malformed
// snapshots are rejected as well; reparenting fails closed.
func (t *Tree) CanReparent(id, newParent uint) bool {
	if id == newParent {
		return false
	}
	if !t.Contains(id) || !t.Contains(newParent) {
		return false
	}
	desc, err := t.Descendants(id)
	if err != nil {
		return false
	}
	_, inSubtree := desc[newParent]
	return !inSubtree
}

// edges flattens the snapshot back into an edge list.
func (t *Tree) edges() []Edge {
	out := make([]Edge, 0, len(t.nodes))
	for _, n := range t.nodes {
		e := Edge{ID: n.id}
		if n.parent != nil {
			pid := *n.parent
			e.ParentID = &pid
		}
		out = append(out, e)
	}
	return out
}

// TreeStore holds the current forest snapshot. Reads take the snapshot
// pointer under a read lock and traverse it without further locking;
// mutations build a full replacement under the write lock so a reader
// never observes a half-applied change. The version counter lets
// callers detect staleness across mutations.
type TreeStore struct {
	mu      sync.RWMutex
	tree    *Tree
	version uint64
}

// NewTreeStore creates a store seeded with the given edges.
func NewTreeStore(edges []Edge) *TreeStore {
	return &TreeStore{tree: NewTree(edges), version: 1}
}

// Snapshot returns the current immutable snapshot.
func (s *TreeStore) Snapshot() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Version returns the current mutation counter.
func (s *TreeStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Replace swaps in a snapshot rebuilt from persisted edges, e.g. after
// startup or an external migration.
func (s *TreeStore) Replace(edges []Edge) {
	next := NewTree(edges)
	s.mu.Lock()
	s.tree = next
	s.version++
	s.mu.Unlock()
}

// AddNode inserts a school. A nil parent creates a new root.
func (s *TreeStore) AddNode(id uint, parent *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.Contains(id) {
		return ErrDuplicateSchool
	}
	if parent != nil && !s.tree.Contains(*parent) {
		return ErrUnknownSchool
	}
	edges := append(s.tree.edges(), Edge{ID: id, ParentID: parent})
	s.tree = NewTree(edges)
	s.version++
	return nil
}

// Reparent moves a school under a new parent (nil promotes it to a
// root). The move is validated with CanReparent and fails closed.
func (s *TreeStore) Reparent(id uint, newParent *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tree.Contains(id) {
		return ErrUnknownSchool
	}
	if newParent != nil {
		if !s.tree.Contains(*newParent) {
			return ErrUnknownSchool
		}
		if !s.tree.CanReparent(id, *newParent) {
			return ErrInvalidParent
		}
	}
	edges := s.tree.edges()
	for i := range edges {
		if edges[i].ID == id {
			edges[i].ParentID = newParent
		}
	}
	s.tree = NewTree(edges)
	s.version++
	return nil
}

// RemoveNode deletes a school, re-linking its children to the removed
// node's parent (or promoting them to roots). It returns the school id
// that direct content of the removed node should be reassigned to, or
// nil when the removed node was a root and content should be detached.
func (s *TreeStore) RemoveNode(id uint) (*uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tree.Contains(id) {
		return nil, ErrUnknownSchool
	}
	var heir *uint
	if pid, ok := s.tree.Parent(id); ok {
		p := pid
		heir = &p
	}
	edges := make([]Edge, 0, s.tree.Len()-1)
	for _, e := range s.tree.edges() {
		if e.ID == id {
			continue
		}
		if e.ParentID != nil && *e.ParentID == id {
			e.ParentID = heir
		}
		edges = append(edges, e)
	}
	s.tree = NewTree(edges)
	s.version++
	return heir, nil
}
