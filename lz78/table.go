// Package lz78 implements the phrase substitution stage of lzh.
//
// Phrases of three or more bytes are registered in a table as they are first seen, and later occurrences are replaced by
// the Marker byte followed by the phrase's one byte code.
// A literal Marker is written twice.
// The table is never transmitted: the decoder feeds everything it outputs through the same registration rule as the
// encoder, so both sides hold the same table at the same point of the stream.
// Encoder and decoder must agree on the table capacity out of band.
package lz78

import (
	"bytes"
	"fmt"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("lzh/lz78")

const (
	// Marker introduces a back-reference, or a literal Marker when doubled.
	Marker byte = 0x00

	// MaxCapacity is the largest number of phrases a table can hold: every byte value except Marker is a code.
	MaxCapacity = 255

	// DefaultCapacity is the table capacity used by the lzh commands.
	DefaultCapacity = 254

	// minPhrase is the shortest phrase that is registered.
	minPhrase = 3
)

var (
	// ErrCapacity is returned for a table capacity outside [0, MaxCapacity].
	ErrCapacity = errors.New("lz78: capacity out of range")

	// ErrCorrupt is returned when a substituted stream cannot have been produced by the encoder.
	ErrCorrupt = errors.New("lz78: corrupt stream")
)

// A Table holds the registered phrases, coded from 1 upwards.
// Once capacity phrases are registered the table stops growing, and the phrases already in it remain usable.
type Table struct {
	codes    map[string]byte
	phrases  [MaxCapacity + 1][]byte
	next     int
	capacity int
}

// NewTable returns an empty table that holds up to capacity phrases.
func NewTable(capacity int) (*Table, error) {
	if capacity < 0 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrCapacity, "%d", capacity)
	}
	t := &Table{
		codes:    make(map[string]byte),
		next:     1,
		capacity: capacity,
	}
	return t, nil
}

// Lookup returns the code of phrase.
func (t *Table) Lookup(phrase []byte) (byte, bool) {
	code, ok := t.codes[string(phrase)]
	return code, ok
}

// Phrase returns the phrase registered under code.
func (t *Table) Phrase(code byte) ([]byte, bool) {
	p := t.phrases[code]
	return p, p != nil
}

// Len returns the number of registered phrases.
func (t *Table) Len() int {
	return t.next - 1
}

// Capacity returns the maximum number of phrases of t.
func (t *Table) Capacity() int {
	return t.capacity
}

// Full reports whether t accepts no more phrases.
func (t *Table) Full() bool {
	return t.Len() >= t.capacity
}

// Equal reports whether t and o hold the same phrases under the same codes.
func (t *Table) Equal(o *Table) bool {
	if t.next != o.next {
		return false
	}
	for code := 1; code < t.next; code++ {
		if !bytes.Equal(t.phrases[code], o.phrases[code]) {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	var b bytes.Buffer
	for code := 1; code < t.next; code++ {
		fmt.Fprintf(&b, "%3d %q\n", code, t.phrases[code])
	}
	return b.String()
}

// register adds a copy of phrase under the next code.
func (t *Table) register(phrase []byte) {
	p := append([]byte(nil), phrase...)
	code := byte(t.next)
	t.phrases[code] = p
	t.codes[string(p)] = code
	t.next++
}

// nextCode is the code the next registered phrase will get.
func (t *Table) nextCode() (byte, bool) {
	if t.Full() {
		return 0, false
	}
	return byte(t.next), true
}

type action int

const (
	// actionNone defers any output until the running match is decided.
	actionNone action = iota
	// actionReference substitutes the code of the match minus its last byte.
	actionReference
	// actionLiteral writes the match as is.
	actionLiteral
)

// A registrar is the state machine deciding which phrases are registered and when output is produced.
// The encoder acts on the returned actions, the decoder only keeps the table in step.
type registrar struct {
	table   *Table
	match   []byte
	matched bool
}

// step feeds one byte into the running match.
// For actionLiteral, literal aliases internal state and is only valid until the next call.
func (r *registrar) step(b byte) (act action, code byte, literal []byte) {
	r.match = append(r.match, b)
	if _, ok := r.table.Lookup(r.match); ok {
		r.matched = true
		return actionNone, 0, nil
	}
	if len(r.match) < minPhrase {
		return actionNone, 0, nil
	}

	if !r.table.Full() {
		r.table.register(r.match)
	}
	if r.matched {
		code, _ = r.table.Lookup(r.match[:len(r.match)-1])
		r.match = append(r.match[:0], b)
		r.matched = false
		return actionReference, code, nil
	}
	literal = r.match
	r.match = r.match[:0]
	return actionLiteral, 0, literal
}

// pending returns what remains of the running match at the end of input.
// It is either a registered phrase, reported with ok true, or fewer than minPhrase unregistered bytes.
func (r *registrar) pending() (code byte, ok bool, literal []byte) {
	if len(r.match) == 0 {
		return 0, false, nil
	}
	if code, ok := r.table.Lookup(r.match); ok {
		return code, true, nil
	}
	return 0, false, r.match
}
