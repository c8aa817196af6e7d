package merkle

import (
	"errors"
	"testing"

	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/poseidon2"
	"github.com/eth2030/leansig/thash"
)

func testHasher() *thash.Hasher {
	return thash.NewHasher(poseidon2.Width24, 8)
}

func testLeaves(h *thash.Hasher, start, n uint64) []Node {
	leaves := make([]Node, n)
	for i := range leaves {
		// Arbitrary distinct leaf hashes.
		ends := [][]field.Element{{field.FromUint64(start + uint64(i))}}
		leaves[i] = h.LeafHash(start+uint64(i), ends)
	}
	return leaves
}

func TestRootAndPathsFullTree(t *testing.T) {
	h := testHasher()
	tree := NewHashTree(h, 4, 0, testLeaves(h, 0, 16))
	root := tree.Root()
	if len(root) != 8 {
		t.Fatalf("root length = %d, want 8", len(root))
	}

	for leaf := uint64(0); leaf < 16; leaf++ {
		path, err := tree.Path(leaf)
		if err != nil {
			t.Fatalf("Path(%d): %v", leaf, err)
		}
		if len(path) != 4 {
			t.Fatalf("path length = %d, want 4", len(path))
		}
		leafHash := tree.node(0, leaf)
		if !VerifyPath(h, root, 4, leaf, leafHash, path) {
			t.Errorf("leaf %d: valid path rejected", leaf)
		}
	}
}

func TestVerifyPathRejectsTampering(t *testing.T) {
	h := testHasher()
	tree := NewHashTree(h, 3, 0, testLeaves(h, 0, 8))
	root := tree.Root()

	path, err := tree.Path(5)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	leafHash := tree.node(0, 5)

	// Wrong leaf index.
	if VerifyPath(h, root, 3, 4, leafHash, path) {
		t.Error("path verified under wrong leaf index")
	}

	// Flipped sibling element.
	bad := make([]Node, len(path))
	copy(bad, path)
	mutated := make(Node, len(path[1]))
	copy(mutated, path[1])
	mutated[0] = field.Add(mutated[0], 1)
	bad[1] = mutated
	if VerifyPath(h, root, 3, 5, leafHash, bad) {
		t.Error("path verified with corrupted sibling")
	}

	// Wrong path length.
	if VerifyPath(h, root, 3, 5, leafHash, path[:2]) {
		t.Error("short path accepted")
	}
}

func TestPartialTreeUsesPlaceholders(t *testing.T) {
	h := testHasher()
	// Materialise only leaves [0, 4) of a height-3 tree.
	tree := NewHashTree(h, 3, 0, testLeaves(h, 0, 4))
	root := tree.Root()

	// The root must differ from the root over a different leaf subset,
	// and the auth path of leaf 0 must include placeholder-derived nodes.
	path, err := tree.Path(0)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if !VerifyPath(h, root, 3, 0, tree.node(0, 0), path) {
		t.Error("path over placeholder region rejected")
	}

	// A tree materialising all 8 leaves has a different root: the absent
	// leaves are placeholders, not the test leaves.
	full := NewHashTree(h, 3, 0, testLeaves(h, 0, 8))
	if field.Equal(root, full.Root()) {
		t.Error("partial and full trees share a root")
	}
}

func TestOffsetSpan(t *testing.T) {
	h := testHasher()
	// Activation range [6, 10) in a height-4 tree crosses subtree borders.
	tree := NewHashTree(h, 4, 6, testLeaves(h, 6, 4))
	root := tree.Root()
	for leaf := uint64(6); leaf < 10; leaf++ {
		path, err := tree.Path(leaf)
		if err != nil {
			t.Fatalf("Path(%d): %v", leaf, err)
		}
		if !VerifyPath(h, root, 4, leaf, tree.node(0, leaf), path) {
			t.Errorf("leaf %d: path rejected in offset span", leaf)
		}
	}
	if _, err := tree.Path(5); !errors.Is(err, ErrLeafRange) {
		t.Errorf("Path(5) err = %v, want ErrLeafRange", err)
	}
	if _, err := tree.Path(10); !errors.Is(err, ErrLeafRange) {
		t.Errorf("Path(10) err = %v, want ErrLeafRange", err)
	}
}

func TestPlaceholderDeterminism(t *testing.T) {
	h := testHasher()
	t1 := NewHashTree(h, 5, 0, testLeaves(h, 0, 2))
	t2 := NewHashTree(h, 5, 0, testLeaves(h, 0, 2))
	if !field.Equal(t1.Root(), t2.Root()) {
		t.Error("placeholder-heavy root not deterministic")
	}
}

func TestFlattenRebuildRoundTrip(t *testing.T) {
	h := testHasher()
	tree := NewHashTree(h, 4, 3, testLeaves(h, 3, 9))
	elems := tree.FlattenNodes()

	want := NodeCount(4, 3, 9) * 8
	if len(elems) != want {
		t.Fatalf("flattened length = %d, want %d", len(elems), want)
	}

	rebuilt, err := RebuildFromNodes(h, 4, 3, 9, elems)
	if err != nil {
		t.Fatalf("RebuildFromNodes: %v", err)
	}
	if !field.Equal(tree.Root(), rebuilt.Root()) {
		t.Error("rebuilt root differs")
	}
	for leaf := uint64(3); leaf < 12; leaf++ {
		p1, err1 := tree.Path(leaf)
		p2, err2 := rebuilt.Path(leaf)
		if err1 != nil || err2 != nil {
			t.Fatalf("Path errors: %v %v", err1, err2)
		}
		for l := range p1 {
			if !field.Equal(p1[l], p2[l]) {
				t.Fatalf("leaf %d level %d: rebuilt path differs", leaf, l)
			}
		}
	}

	if _, err := RebuildFromNodes(h, 4, 3, 9, elems[:len(elems)-1]); err == nil {
		t.Error("truncated node stream accepted")
	}
}

func TestNodeCountPowerOfTwo(t *testing.T) {
	// A full power-of-two span has exactly 2n-1 nodes plus the levels above
	// the span top when the span is the whole tree.
	if got := NodeCount(3, 0, 8); got != 15 {
		t.Errorf("NodeCount(3,0,8) = %d, want 15", got)
	}
	if got := NodeCount(10, 0, 1024); got != 2047 {
		t.Errorf("NodeCount(10,0,1024) = %d, want 2047", got)
	}
}
