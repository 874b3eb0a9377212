package lzh

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/lzh/huffman"
	"github.com/fumin/lzh/lz78"
)

func TestCompress(t *testing.T) {
	const name = "gettysburg.txt"
	const capacity = lz78.DefaultCapacity

	// Compress
	in, err := os.Open(name)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer in.Close()
	f, err := os.CreateTemp("", "lzh.TestCompress.Compress")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()
	defer os.Remove(f.Name())
	if err := Compress(f, in, capacity); err != nil {
		t.Fatalf("%v", err)
	}

	// Decompress
	_, err = f.Seek(0, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	df, err := os.CreateTemp("", "lzh.TestCompress.Decompress")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer df.Close()
	defer os.Remove(df.Name())
	if err := Decompress(df, f, capacity); err != nil {
		t.Fatalf("%v", err)
	}

	// Check if the decompressed result is the same as the original file
	_, err = df.Seek(0, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	decom, err := io.ReadAll(df)
	if err != nil {
		t.Fatalf("%v", err)
	}
	gettys, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(gettys, decom) {
		t.Errorf("%v %v", gettys, decom)
	}
}

func roundTrip(t *testing.T, in []byte) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := Compress(buf, bytes.NewReader(in), lz78.DefaultCapacity); err != nil {
		t.Fatalf("%v", err)
	}
	compressed := append([]byte(nil), buf.Bytes()...)

	out := bytes.NewBuffer(nil)
	if err := Decompress(out, buf, lz78.DefaultCapacity); err != nil {
		t.Fatalf("%q: %+v", in, err)
	}
	if !bytes.Equal(out.Bytes(), in) {
		t.Fatalf("got %q want %q", out.Bytes(), in)
	}
	return compressed
}

func TestCompressEmpty(t *testing.T) {
	compressed := roundTrip(t, nil)
	want := []byte{
		huffman.End,
		huffman.End, huffman.Back,
		huffman.Escape, huffman.Escape, huffman.Back,
		huffman.Back,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	if !bytes.Equal(compressed, want) {
		t.Errorf("% x", compressed)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		"aaaa",
		"a\x00b\\c\x00\x00\\\\",
		"\x00\\\a",
		"\\\\\\\\\\\\\\\\\\\\",
	}
	for _, in := range inputs {
		roundTrip(t, []byte(in))
	}

	roundTrip(t, bytes.Repeat([]byte{'q'}, 10000))
	roundTrip(t, bytes.Repeat([]byte{0}, 10000))

	rng := rand.New(rand.NewSource(5))
	for iteration := 0; iteration < 20; iteration++ {
		in := make([]byte, rng.Intn(10000))
		for i := range in {
			in[i] = byte(rng.Intn(1 + iteration*12))
		}
		roundTrip(t, in)
	}
}

func TestCompressRepetitive(t *testing.T) {
	// The tree header costs a few bytes per distinct symbol, so the input must be long enough to amortize it.
	in := bytes.Repeat([]byte("ab"), 500)
	compressed := roundTrip(t, in)
	if len(compressed) >= len(in) {
		t.Errorf("%d >= %d", len(compressed), len(in))
	}

	size, err := CompressedSize(in, lz78.DefaultCapacity)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if size != int64(len(compressed)) {
		t.Errorf("%d != %d", size, len(compressed))
	}
}

func TestDecompressCorrupt(t *testing.T) {
	compressed := roundTrip(t, []byte("the quick brown fox jumps over the lazy dog"))

	err := Decompress(io.Discard, bytes.NewReader(compressed[:2]), lz78.DefaultCapacity)
	if errors.Cause(err) != huffman.ErrMalformedHeader {
		t.Errorf("%v", err)
	}

	err = Decompress(io.Discard, bytes.NewReader(compressed[:len(compressed)-16]), lz78.DefaultCapacity)
	if errors.Cause(err) != huffman.ErrUnknownCode {
		t.Errorf("%v", err)
	}

	err = Compress(io.Discard, bytes.NewReader(nil), lz78.MaxCapacity+1)
	if errors.Cause(err) != lz78.ErrCapacity {
		t.Errorf("%v", err)
	}
}
