// Package merkle implements the hash tree binding one-time public keys under
// a single root. The tree is defined over the whole 2^height leaf space;
// leaves outside the materialised span resolve to deterministic placeholders,
// so the root always commits to every epoch regardless of how many leaves a
// key actually activates.
package merkle

import (
	"errors"
	"sync"

	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/thash"
)

// ErrLeafRange reports a leaf index outside the materialised span.
var ErrLeafRange = errors.New("merkle: leaf index outside materialised range")

// Node is one hash-output-sized tuple of field elements.
type Node = []field.Element

// HashTree is a binary hash tree of the given height materialised over a
// contiguous leaf span. Internal nodes above the span are computed against
// memoised placeholder subtrees. Read operations are safe for concurrent use
// after construction.
type HashTree struct {
	hasher    *thash.Hasher
	height    int
	leafStart uint64

	// levels[l] covers indices [starts[l], starts[l]+len(levels[l])) at
	// level l; level height holds the single root node.
	levels [][]Node
	starts []uint64

	phMu         sync.Mutex
	placeholders map[placeholderKey]Node
}

type placeholderKey struct {
	level int
	index uint64
}

// NewHashTree builds the tree bottom-up from the materialised leaf hashes
// starting at leaf index leafStart.
func NewHashTree(h *thash.Hasher, height int, leafStart uint64, leaves []Node) *HashTree {
	t := &HashTree{
		hasher:       h,
		height:       height,
		leafStart:    leafStart,
		levels:       make([][]Node, height+1),
		starts:       make([]uint64, height+1),
		placeholders: make(map[placeholderKey]Node),
	}
	t.levels[0] = leaves
	t.starts[0] = leafStart

	for l := 1; l <= height; l++ {
		childStart := t.starts[l-1]
		childEnd := childStart + uint64(len(t.levels[l-1]))
		start := childStart >> 1
		end := (childEnd - 1) >> 1
		row := make([]Node, end-start+1)
		for i := start; i <= end; i++ {
			left := t.node(l-1, 2*i)
			right := t.node(l-1, 2*i+1)
			row[i-start] = h.TreeNode(l, i, left, right)
		}
		t.levels[l] = row
		t.starts[l] = start
	}
	return t
}

// node resolves a node at (level, index) from the materialised rows or the
// placeholder forest.
func (t *HashTree) node(level int, index uint64) Node {
	row := t.levels[level]
	start := t.starts[level]
	if index >= start && index < start+uint64(len(row)) {
		return row[index-start]
	}
	return t.placeholder(level, index)
}

// placeholder computes the deterministic node covering an entirely
// unmaterialised subtree rooted at (level, index). The memo keeps repeated
// path extractions from refolding the same subtrees.
func (t *HashTree) placeholder(level int, index uint64) Node {
	t.phMu.Lock()
	defer t.phMu.Unlock()
	return t.placeholderLocked(level, index)
}

func (t *HashTree) placeholderLocked(level int, index uint64) Node {
	key := placeholderKey{level, index}
	if n, ok := t.placeholders[key]; ok {
		return n
	}
	var n Node
	if level == 0 {
		n = t.hasher.PlaceholderLeaf(index)
	} else {
		left := t.placeholderLocked(level-1, 2*index)
		right := t.placeholderLocked(level-1, 2*index+1)
		n = t.hasher.TreeNode(level, index, left, right)
	}
	t.placeholders[key] = n
	return n
}

// Root returns the level-height node.
func (t *HashTree) Root() Node {
	return t.levels[t.height][0]
}

// Height returns the tree height.
func (t *HashTree) Height() int { return t.height }

// LeafStart returns the first materialised leaf index.
func (t *HashTree) LeafStart() uint64 { return t.leafStart }

// NumLeaves returns the number of materialised leaves.
func (t *HashTree) NumLeaves() uint64 { return uint64(len(t.levels[0])) }

// Path extracts the authentication path for the given leaf: the sibling at
// every level from the leaf up to (but excluding) the root.
func (t *HashTree) Path(leaf uint64) ([]Node, error) {
	if leaf < t.leafStart || leaf >= t.leafStart+t.NumLeaves() {
		return nil, ErrLeafRange
	}
	path := make([]Node, t.height)
	idx := leaf
	for l := 0; l < t.height; l++ {
		path[l] = t.node(l, idx^1)
		idx >>= 1
	}
	return path, nil
}

// FlattenNodes packs every materialised node, level 0 upward and
// left-to-right within each level, into one element slice. The layout is the
// serialized tree form of a full secret key.
func (t *HashTree) FlattenNodes() []field.Element {
	var out []field.Element
	for _, row := range t.levels {
		for _, n := range row {
			out = append(out, n...)
		}
	}
	return out
}

// NodeCount returns the total number of materialised nodes across all levels.
func NodeCount(height int, leafStart, numLeaves uint64) int {
	count := int(numLeaves)
	start, end := leafStart, leafStart+numLeaves-1
	for l := 1; l <= height; l++ {
		start >>= 1
		end >>= 1
		count += int(end - start + 1)
	}
	return count
}

// RebuildFromNodes reconstructs a tree from the FlattenNodes layout. The
// caller supplies the same geometry used at construction; elems must hold
// exactly NodeCount(...) * hashLen elements.
func RebuildFromNodes(h *thash.Hasher, height int, leafStart, numLeaves uint64, elems []field.Element) (*HashTree, error) {
	hashLen := h.HashLen()
	if len(elems) != NodeCount(height, leafStart, numLeaves)*hashLen {
		return nil, ErrLeafRange
	}
	t := &HashTree{
		hasher:       h,
		height:       height,
		leafStart:    leafStart,
		levels:       make([][]Node, height+1),
		starts:       make([]uint64, height+1),
		placeholders: make(map[placeholderKey]Node),
	}
	off := 0
	start, end := leafStart, leafStart+numLeaves-1
	for l := 0; l <= height; l++ {
		if l > 0 {
			start >>= 1
			end >>= 1
		}
		row := make([]Node, end-start+1)
		for i := range row {
			row[i] = Node(elems[off : off+hashLen])
			off += hashLen
		}
		t.levels[l] = row
		t.starts[l] = start
	}
	return t, nil
}

// VerifyPath folds leafHash with the sibling path by the bits of leaf and
// reports whether the result equals root.
func VerifyPath(h *thash.Hasher, root Node, height int, leaf uint64, leafHash Node, path []Node) bool {
	if len(path) != height {
		return false
	}
	cur := leafHash
	idx := leaf
	for l := 0; l < height; l++ {
		sibling := path[l]
		if idx&1 == 0 {
			cur = h.TreeNode(l+1, idx>>1, cur, sibling)
		} else {
			cur = h.TreeNode(l+1, idx>>1, sibling, cur)
		}
		idx >>= 1
	}
	return field.Equal(cur, root)
}
