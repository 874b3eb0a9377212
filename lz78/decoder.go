package lz78

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

type decoder struct {
	r   *bufio.Reader
	w   *bufio.Writer
	reg registrar
}

// Decode reverses Encode, reading src until it is exhausted.
// capacity must equal the one the stream was encoded with.
// It returns the rebuilt table.
func Decode(dst io.Writer, src io.Reader, capacity int) (*Table, error) {
	table, err := NewTable(capacity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	dec := &decoder{
		r:   bufio.NewReader(src),
		w:   bufio.NewWriter(dst),
		reg: registrar{table: table},
	}
	if err := dec.run(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	log.Debugf("decode: %d of %d phrases registered", table.Len(), table.Capacity())
	return table, errors.Wrap(dec.w.Flush(), "")
}

func (dec *decoder) run() error {
	for {
		b, err := dec.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "")
		}
		if b != Marker {
			if err := dec.emit(b); err != nil {
				return err
			}
			continue
		}

		code, err := dec.r.ReadByte()
		if err == io.EOF {
			return errors.Wrap(ErrCorrupt, "stream ends after a marker")
		}
		if err != nil {
			return errors.Wrap(err, "")
		}
		if code == Marker {
			if err := dec.emit(Marker); err != nil {
				return err
			}
			continue
		}

		phrase, err := dec.phrase(code)
		if err != nil {
			return err
		}
		for _, b := range phrase {
			if err := dec.emit(b); err != nil {
				return err
			}
		}
	}
}

// phrase resolves code against the table.
// The encoder may reference a phrase it registered on that phrase's own first byte, which the decoder has not seen yet.
// Such a phrase is the running match followed by its own first byte, and its code is the next one to be assigned.
func (dec *decoder) phrase(code byte) ([]byte, error) {
	if p, ok := dec.reg.table.Phrase(code); ok {
		// Feeding p into the registrar can register a copy of the match, never modify p itself.
		return p, nil
	}
	next, ok := dec.reg.table.nextCode()
	match := dec.reg.match
	if !ok || code != next || len(match) == 0 {
		return nil, errors.Wrapf(ErrCorrupt, "unknown code %d", code)
	}
	p := make([]byte, 0, len(match)+1)
	p = append(p, match...)
	return append(p, match[0]), nil
}

// emit writes b and keeps the table in step with the encoder.
func (dec *decoder) emit(b byte) error {
	if err := dec.w.WriteByte(b); err != nil {
		return errors.Wrap(err, "")
	}
	dec.reg.step(b)
	return nil
}
