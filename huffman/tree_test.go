package huffman

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

func randomFrequencies(rng *rand.Rand) [256]uint64 {
	var freq [256]uint64
	// At least two symbols.
	freq[End] = 1
	freq[Escape] = 1
	for i := rng.Intn(256); i > 0; i-- {
		freq[rng.Intn(256)] += uint64(rng.Intn(1000))
	}
	return freq
}

func TestBuildInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iteration := 0; iteration < 50; iteration++ {
		freq := randomFrequencies(rng)
		tree, err := Build(freq)
		if err != nil {
			t.Fatalf("%v", err)
		}

		codes := tree.Codes()
		decoding := tree.Decoding()
		leaves := 0
		for v := 0; v < 256; v++ {
			code, ok := codes.Code(byte(v))
			if ok != (freq[v] > 0) {
				t.Fatalf("#%d symbol %02x: present %v count %d", iteration, v, ok, freq[v])
			}
			if !ok {
				continue
			}
			leaves++
			got, ok := decoding.Lookup(code)
			if !ok || got != byte(v) {
				t.Errorf("#%d symbol %02x: code %v decodes to %02x %v", iteration, v, code, got, ok)
			}
		}
		if leaves != tree.Leaves() {
			t.Errorf("#%d: %d leaves, %d codes", iteration, tree.Leaves(), leaves)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	freq := Frequencies([]byte("the quick brown fox jumps over the lazy dog"))
	a, err := Build(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	b, err := Build(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !a.Equal(b) {
		t.Errorf("%v\n%v", a, b)
	}
}

func TestBuildShape(t *testing.T) {
	var freq [256]uint64
	freq['a'] = 5
	freq['b'] = 1
	freq['c'] = 2
	tree, err := Build(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	// b and c merge first with the lower count on the left, then the pair (3) goes left of a (5).
	want := NewInternal(NewInternal(NewLeaf('b'), NewLeaf('c')), NewLeaf('a'))
	if !tree.Equal(want) {
		t.Errorf("got\n%vwant\n%v", tree, want)
	}

	codes := tree.Codes()
	for v, s := range map[byte]string{'a': "1", 'b': "00", 'c': "01"} {
		if code, _ := codes.Code(v); code.String() != s {
			t.Errorf("%c: %v", v, code)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	var freq [256]uint64
	if _, err := Build(freq); errors.Cause(err) != ErrNoSymbols {
		t.Errorf("%v", err)
	}
}

func TestBuildTooDeep(t *testing.T) {
	// Fibonacci counts produce a maximally unbalanced tree.
	var freq [256]uint64
	a, b := uint64(1), uint64(1)
	for i := 0; i < 70; i++ {
		freq[i] = a
		a, b = b, a+b
	}
	if _, err := Build(freq); errors.Cause(err) != ErrCodeTooLong {
		t.Errorf("%v", err)
	}
}

func TestTreeHeaderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iteration := 0; iteration < 50; iteration++ {
		tree, err := Build(randomFrequencies(rng))
		if err != nil {
			t.Fatalf("%v", err)
		}

		buf := bytes.NewBuffer(nil)
		if err := WriteTree(buf, tree); err != nil {
			t.Fatalf("%v", err)
		}
		n := buf.Len()
		buf.WriteString("trailing")

		read, err := ReadTree(buf)
		if err != nil {
			t.Fatalf("#%d: %+v", iteration, err)
		}
		if !read.Equal(tree) {
			t.Fatalf("#%d: got\n%vwant\n%v", iteration, read, tree)
		}
		if buf.String() != "trailing" {
			t.Errorf("#%d: header of %d bytes left %q", iteration, n, buf.String())
		}
	}
}

func TestHeaderEscapes(t *testing.T) {
	tree := NewInternal(NewLeaf(Back), NewInternal(NewLeaf(Escape), NewLeaf(End)))
	buf := bytes.NewBuffer(nil)
	if err := WriteTree(buf, tree); err != nil {
		t.Fatalf("%v", err)
	}
	want := []byte{
		End,
		Escape, Back, Back,
		End,
		Escape, Escape, Back,
		End, Back,
		Back,
		Back,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("% x", buf.Bytes())
	}

	read, err := ReadTree(buf)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !read.Equal(tree) {
		t.Errorf("%v", read)
	}
}

func TestReadTreeMalformed(t *testing.T) {
	inputs := [][]byte{
		{},
		{'a'},
		{Escape},
		{Escape, Back},
		{End, 'a', Back},
		{End, 'a', Back, 'b', Back},
		{End, 'a', Back, 'b', Back, 'x'},
	}
	for _, in := range inputs {
		if _, err := ReadTree(bytes.NewBuffer(in)); errors.Cause(err) != ErrMalformedHeader {
			t.Errorf("% x: %v", in, err)
		}
	}
}
