package huffman

import (
	"io"

	"github.com/pkg/errors"
)

// ErrMalformedHeader is returned when a serialized tree ends early or lacks the Back closing an internal node.
var ErrMalformedHeader = errors.New("huffman: malformed tree header")

// WriteTree serializes t with the grammar
//
//	Node        := Leaf | Internal
//	Leaf        := EscapedByte Back
//	Internal    := End Node Node Back
//	EscapedByte := byte | Escape Back Back | Escape Escape Back
//
// where an unescaped byte is anything but Back and Escape.
func WriteTree(w io.ByteWriter, t *Tree) error {
	if t.IsLeaf() {
		if err := writeEscaped(w, t.Value); err != nil {
			return errors.Wrap(err, "")
		}
		return errors.Wrap(w.WriteByte(Back), "")
	}

	if err := w.WriteByte(End); err != nil {
		return errors.Wrap(err, "")
	}
	if err := WriteTree(w, t.Left); err != nil {
		return err
	}
	if err := WriteTree(w, t.Right); err != nil {
		return err
	}
	return errors.Wrap(w.WriteByte(Back), "")
}

// writeEscaped writes a leaf value, prefixing Escape when v is one of the header's reserved bytes.
func writeEscaped(w io.ByteWriter, v byte) error {
	if v == Back || v == Escape {
		if err := w.WriteByte(Escape); err != nil {
			return err
		}
	}
	return w.WriteByte(v)
}

// ReadTree reads a tree written by WriteTree.
// It consumes exactly the bytes of the tree, using one byte of lookahead.
func ReadTree(r io.ByteScanner) (*Tree, error) {
	v, err := readHeaderByte(r)
	if err != nil {
		return nil, err
	}
	if v == Escape {
		if v, err = readHeaderByte(r); err != nil {
			return nil, err
		}
	}

	next, err := readHeaderByte(r)
	if err != nil {
		return nil, err
	}
	if next == Back {
		return NewLeaf(v), nil
	}
	if err := r.UnreadByte(); err != nil {
		return nil, errors.Wrap(err, "")
	}

	// v is the internal marker, which carries no information.
	left, err := ReadTree(r)
	if err != nil {
		return nil, err
	}
	right, err := ReadTree(r)
	if err != nil {
		return nil, err
	}
	if b, err := readHeaderByte(r); err != nil {
		return nil, err
	} else if b != Back {
		return nil, errors.Wrapf(ErrMalformedHeader, "internal node closed by %#02x", b)
	}
	return NewInternal(left, right), nil
}

func readHeaderByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, errors.Wrap(ErrMalformedHeader, "unexpected end of header")
	}
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return b, nil
}
