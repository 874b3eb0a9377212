package huffman

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ErrUnknownCode is returned when the packed bits run out, or grow longer than any code, before resolving to a symbol.
var ErrUnknownCode = errors.New("huffman: bits do not resolve to a code")

// needsEscape reports whether a payload byte must be preceded by the code for Escape.
func needsEscape(b byte) bool {
	return b == End || b == Escape
}

// Encode reads src to exhaustion and writes its Huffman coding to dst.
func Encode(dst io.Writer, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return errors.Wrap(err, "")
	}

	freq := Frequencies(data)
	for _, s := range []byte{End, Escape} {
		if freq[s] == 0 {
			freq[s] = 1
		}
	}
	tree, err := Build(freq)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Debugf("encode %d bytes: %d leaves, longest code %d bits", len(data), tree.Leaves(), tree.Depth())

	w := bufio.NewWriter(dst)
	if err := WriteTree(w, tree); err != nil {
		return errors.Wrap(err, "")
	}

	codes := tree.Codes()
	escape, _ := codes.Code(Escape)
	bw := NewBitWriter(w)
	for _, b := range data {
		if needsEscape(b) {
			if err := bw.Write(escape); err != nil {
				return errors.Wrap(err, "")
			}
		}
		code, _ := codes.Code(b)
		if err := bw.Write(code); err != nil {
			return errors.Wrap(err, "")
		}
	}
	end, _ := codes.Code(End)
	if err := bw.Write(end); err != nil {
		return errors.Wrap(err, "")
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return errors.Wrap(w.Flush(), "")
}

// Decode reads a stream written by Encode from src and writes the original bytes to dst.
// Decoding stops at the end marker, so bytes following the unit in src are left unread apart from buffering.
func Decode(dst io.Writer, src io.Reader) error {
	r := bufio.NewReader(src)
	tree, err := ReadTree(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if tree.IsLeaf() {
		return errors.Wrap(ErrMalformedHeader, "tree has a single leaf")
	}
	if d := tree.Depth(); d > maxBits {
		return errors.Wrapf(ErrMalformedHeader, "tree depth %d", d)
	}
	table := tree.Decoding()
	log.Debugf("decode: %d leaves, longest code %d bits", tree.Leaves(), table.MaxLength())

	w := bufio.NewWriter(dst)
	br := NewBitReader(r)
	escaped := false
	for {
		c, err := nextSymbol(br, table)
		if err != nil {
			return errors.Wrap(err, "")
		}

		if c == Escape && !escaped {
			escaped = true
			continue
		}
		if c == End && !escaped {
			break
		}
		escaped = false
		if err := w.WriteByte(c); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return errors.Wrap(w.Flush(), "")
}

// nextSymbol accumulates bits until they form a code of table.
func nextSymbol(br *BitReader, table *DecodeTable) (byte, error) {
	var matching BitCode
	for {
		if c, ok := table.Lookup(matching); ok {
			return c, nil
		}
		if matching.Length >= table.MaxLength() {
			return 0, errors.Wrapf(ErrUnknownCode, "%v", matching)
		}
		if err := br.ReadBit(&matching); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, errors.Wrapf(ErrUnknownCode, "input exhausted after %v", matching)
			}
			return 0, errors.Wrap(err, "")
		}
	}
}
