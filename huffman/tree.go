// Package huffman implements the entropy coding stage of lzh: a minimum-redundancy prefix code over bytes,
// whose tree is written ahead of the packed bits so that a stream can be decoded on its own.
//
// The stream layout is the serialized tree (see WriteTree) followed by 64-bit words in the host's native byte order.
// Within a word the first bit is the most significant one.
// The payload reserves two symbols: 0x00 marks the end of the unit and Escape prefixes a literal 0x00 or Escape.
package huffman

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("lzh/huffman")

const (
	// Back terminates every node of a serialized tree.
	Back byte = 0x07

	// Escape makes a reserved byte appear as data, both in the tree header and in the payload.
	Escape byte = 0x5C

	// End is the payload symbol that terminates a unit, and the marker of an internal node in the header.
	End byte = 0x00
)

var (
	// ErrNoSymbols is returned when a tree is requested for an empty frequency table.
	ErrNoSymbols = errors.New("huffman: no symbols to build a tree from")

	// ErrCodeTooLong is returned when the tree for a frequency table is deeper than a BitCode can hold.
	ErrCodeTooLong = errors.New("huffman: code longer than 64 bits")
)

// A Tree is a node of a Huffman tree.
// Leaves carry a byte value and have no children, internal nodes always have both.
type Tree struct {
	Value       byte
	Left, Right *Tree
}

// NewLeaf returns a leaf holding v.
func NewLeaf(v byte) *Tree {
	return &Tree{Value: v}
}

// NewInternal returns an internal node with the given children.
func NewInternal(left, right *Tree) *Tree {
	return &Tree{Value: End, Left: left, Right: right}
}

// IsLeaf reports whether t holds a literal byte.
func (t *Tree) IsLeaf() bool {
	return t.Left == nil && t.Right == nil
}

// Leaves returns the number of leaves under t.
func (t *Tree) Leaves() int {
	if t.IsLeaf() {
		return 1
	}
	return t.Left.Leaves() + t.Right.Leaves()
}

// Depth returns the length of the longest code of t.
func (t *Tree) Depth() int {
	if t.IsLeaf() {
		return 0
	}
	l, r := t.Left.Depth(), t.Right.Depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

// Equal reports whether t and o have the same shape and the same leaves at the same positions.
func (t *Tree) Equal(o *Tree) bool {
	if t.IsLeaf() || o.IsLeaf() {
		return t.IsLeaf() && o.IsLeaf() && t.Value == o.Value
	}
	return t.Left.Equal(o.Left) && t.Right.Equal(o.Right)
}

// String lists the leaves of t in traversal order, one "value code" pair per line.
func (t *Tree) String() string {
	var sb strings.Builder
	t.walk(BitCode{}, func(v byte, code BitCode) {
		fmt.Fprintf(&sb, "%02x %v\n", v, code)
	})
	return sb.String()
}

// walk visits the leaves of t depth first, left edges appending a 0 and right edges a 1.
func (t *Tree) walk(prefix BitCode, visit func(v byte, code BitCode)) {
	if t.IsLeaf() {
		visit(t.Value, prefix)
		return
	}
	t.Left.walk(prefix.Append0(), visit)
	t.Right.walk(prefix.Append1(), visit)
}

// A CodeTable maps byte values to their codes.
type CodeTable struct {
	codes   [256]BitCode
	present [256]bool
}

// Code returns the code for v and whether v is a leaf of the tree the table was built from.
func (ct *CodeTable) Code(v byte) (BitCode, bool) {
	return ct.codes[v], ct.present[v]
}

// A DecodeTable maps codes back to byte values.
type DecodeTable struct {
	symbols map[BitCode]byte
	maxLen  int
}

// Lookup returns the byte value for code, if code is a complete code of the tree.
func (dt *DecodeTable) Lookup(code BitCode) (byte, bool) {
	v, ok := dt.symbols[code]
	return v, ok
}

// MaxLength is the length of the longest code in the table.
func (dt *DecodeTable) MaxLength() int {
	return dt.maxLen
}

// Codes builds the code table of t.
func (t *Tree) Codes() *CodeTable {
	ct := &CodeTable{}
	t.walk(BitCode{}, func(v byte, code BitCode) {
		ct.codes[v] = code
		ct.present[v] = true
	})
	return ct
}

// Decoding builds the decode table of t.
func (t *Tree) Decoding() *DecodeTable {
	dt := &DecodeTable{symbols: make(map[BitCode]byte)}
	t.walk(BitCode{}, func(v byte, code BitCode) {
		dt.symbols[code] = v
		if code.Length > dt.maxLen {
			dt.maxLen = code.Length
		}
	})
	return dt
}

// Frequencies counts the occurrences of every byte value in p.
func Frequencies(p []byte) [256]uint64 {
	var freq [256]uint64
	for _, b := range p {
		freq[b]++
	}
	return freq
}

// Build constructs the Huffman tree of freq.
// Only byte values with a non-zero count become leaves.
// Equal counts are merged in the order they entered the queue, so a given table always yields the same tree.
func Build(freq [256]uint64) (*Tree, error) {
	pq := make(priorityQueue, 0, 256)
	var seq int
	for v, count := range freq {
		if count == 0 {
			continue
		}
		pq = append(pq, &item{node: NewLeaf(byte(v)), count: count, seq: seq, index: len(pq)})
		seq++
	}
	if len(pq) == 0 {
		return nil, ErrNoSymbols
	}
	heap.Init(&pq)

	for pq.Len() > 1 {
		a := heap.Pop(&pq).(*item)
		b := heap.Pop(&pq).(*item)
		heap.Push(&pq, &item{
			node:  NewInternal(a.node, b.node),
			count: a.count + b.count,
			seq:   seq,
		})
		seq++
	}

	root := heap.Pop(&pq).(*item).node
	if d := root.Depth(); d > maxBits {
		return nil, errors.Wrapf(ErrCodeTooLong, "depth %d", d)
	}
	return root, nil
}

type item struct {
	node  *Tree
	count uint64
	seq   int
	index int
}

type priorityQueue []*item

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].count != pq[j].count {
		return pq[i].count < pq[j].count
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}
