// Package index builds task trees from markdown documents.
//
// Nodes live in a flat arena addressed by integer index, with parent links
// as indices rather than pointers, so callers can walk ancestor chains over
// plain data.
package index

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/danrfletcher/agilemd/internal/taskline"
)

// Node is one task in the arena. Parent is the arena index of the parent
// node, or -1 for roots.
type Node struct {
	ID       string
	Parent   int
	Line     int // 1-based document line
	Children []int
}

// Tree is the task arena for one document.
type Tree struct {
	Path   string
	Nodes  []Node
	byLine map[int]int
	byID   map[string]int
}

// Build scans document content and produces the task tree. Parenting
// follows indentation: a task is a child of the nearest preceding task with
// a shallower indent. Node ids are the line's block id when present, else
// path#line.
func Build(path, content string) *Tree {
	t := &Tree{
		Path:   path,
		byLine: map[int]int{},
		byID:   map[string]int{},
	}

	type frame struct {
		indent int
		node   int
	}
	var stack []frame

	for i, raw := range strings.Split(content, "\n") {
		l := taskline.Parse(raw)
		if !l.IsTask() {
			continue
		}
		indent := indentWidth(l.Prefix)

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		parent := -1
		if len(stack) > 0 {
			parent = stack[len(stack)-1].node
		}

		id := l.BlockID
		if id == "" {
			id = fmt.Sprintf("%s#%d", path, i+1)
		}

		n := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{ID: id, Parent: parent, Line: i + 1})
		if parent != -1 {
			t.Nodes[parent].Children = append(t.Nodes[parent].Children, n)
		}
		t.byLine[i+1] = n
		t.byID[id] = n
		stack = append(stack, frame{indent, n})
	}
	return t
}

func indentWidth(prefix string) int {
	w := 0
	for _, r := range prefix {
		switch r {
		case '\t':
			w += 4
		case ' ':
			w++
		default:
			return w
		}
	}
	return w
}

// ByLine returns the arena index of the node on the given 1-based line.
func (t *Tree) ByLine(line int) (int, bool) {
	n, ok := t.byLine[line]
	return n, ok
}

// ByID returns the arena index of the node with the given id.
func (t *Tree) ByID(id string) (int, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Roots returns the arena indices of the top-level tasks in document order.
func (t *Tree) Roots() []int {
	var roots []int
	for i, n := range t.Nodes {
		if n.Parent == -1 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Descendants returns every node under i, depth first, not including i.
func (t *Tree) Descendants(i int) []int {
	var out []int
	var walk func(int)
	walk = func(n int) {
		for _, c := range t.Nodes[n].Children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(i)
	return out
}

// Service caches trees per document path.
type Service struct {
	mu    sync.Mutex
	trees map[string]*Tree
}

func NewService() *Service {
	return &Service{trees: map[string]*Tree{}}
}

// Tree returns the cached tree for path, building it from disk on first use.
func (s *Service) Tree(path string) (*Tree, error) {
	s.mu.Lock()
	if t, ok := s.trees[path]; ok {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()
	return s.Refresh(path)
}

// Refresh rebuilds the tree for path from disk.
func (s *Service) Refresh(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t := Build(path, string(data))
	s.mu.Lock()
	s.trees[path] = t
	s.mu.Unlock()
	return t, nil
}

// RefreshFrom rebuilds the tree for path from already-loaded content,
// keeping the cache in step with an interactive buffer.
func (s *Service) RefreshFrom(path, content string) *Tree {
	t := Build(path, content)
	s.mu.Lock()
	s.trees[path] = t
	s.mu.Unlock()
	return t
}
