package lz78

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// An Encoder substitutes registered phrases in the bytes written to it.
// Close must be called to write out the last, undecided phrase.
type Encoder struct {
	w   *bufio.Writer
	reg registrar
}

// NewEncoder returns an Encoder writing to w with a table of the given capacity.
func NewEncoder(w io.Writer, capacity int) (*Encoder, error) {
	table, err := NewTable(capacity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	enc := &Encoder{
		w:   bufio.NewWriter(w),
		reg: registrar{table: table},
	}
	return enc, nil
}

// Table returns the table built so far.
func (enc *Encoder) Table() *Table {
	return enc.reg.table
}

// Write encodes p.
func (enc *Encoder) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := enc.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteByte encodes b.
func (enc *Encoder) WriteByte(b byte) error {
	act, code, literal := enc.reg.step(b)
	switch act {
	case actionReference:
		return enc.writeReference(code)
	case actionLiteral:
		return enc.writeLiteral(literal)
	}
	return nil
}

// Close writes the pending match and flushes the underlying writer.
// It does not close the underlying writer.
func (enc *Encoder) Close() error {
	code, ok, literal := enc.reg.pending()
	if ok {
		if err := enc.writeReference(code); err != nil {
			return err
		}
	} else if err := enc.writeLiteral(literal); err != nil {
		return err
	}
	enc.reg.match = enc.reg.match[:0]
	enc.reg.matched = false
	log.Debugf("encode: %d of %d phrases registered", enc.reg.table.Len(), enc.reg.table.Capacity())
	return errors.Wrap(enc.w.Flush(), "")
}

func (enc *Encoder) writeReference(code byte) error {
	if err := enc.w.WriteByte(Marker); err != nil {
		return errors.Wrap(err, "")
	}
	return errors.Wrap(enc.w.WriteByte(code), "")
}

// writeLiteral writes p, doubling every Marker.
func (enc *Encoder) writeLiteral(p []byte) error {
	for _, b := range p {
		if b == Marker {
			if err := enc.w.WriteByte(Marker); err != nil {
				return errors.Wrap(err, "")
			}
		}
		if err := enc.w.WriteByte(b); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// Encode substitutes phrases in src until it is exhausted and writes the result to dst.
// It returns the final table, which Decode rebuilds identically.
func Encode(dst io.Writer, src io.Reader, capacity int) (*Table, error) {
	enc, err := NewEncoder(dst, capacity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if _, err := io.Copy(enc, src); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return enc.Table(), nil
}
