package huffman

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// wordBytes is the size of one packed word on the wire.
const wordBytes = maxBits / 8

// A BitWriter packs BitCodes into 64-bit words and writes each full word to an io.Writer.
// The first error encountered is kept and returned by every later call.
type BitWriter struct {
	w    io.Writer
	buf  BitCode
	word [wordBytes]byte
	err  error
}

// NewBitWriter returns a BitWriter writing to w.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// Write appends code to the stream.
func (bw *BitWriter) Write(code BitCode) error {
	if bw.err != nil {
		return bw.err
	}

	free := maxBits - bw.buf.Length
	if code.Length > free {
		hi, lo := code.split(free)
		if err := bw.Write(hi); err != nil {
			return err
		}
		return bw.Write(lo)
	}

	// Shifting by 64 yields zero, which is what an empty accumulator needs.
	bw.buf.Value = bw.buf.Value<<uint(code.Length) | code.Value
	bw.buf.Length += code.Length
	if bw.buf.Length == maxBits {
		bw.flush()
	}
	return bw.err
}

// Close pads the last word with zero bits and writes it.
// A word is always written, so even an empty stream occupies 8 bytes.
// Close does not close the underlying writer.
func (bw *BitWriter) Close() error {
	if bw.err != nil {
		return bw.err
	}
	pad := maxBits - bw.buf.Length
	bw.buf.Value <<= uint(pad)
	bw.buf.Length = maxBits
	bw.flush()
	return bw.err
}

func (bw *BitWriter) flush() {
	binary.NativeEndian.PutUint64(bw.word[:], bw.buf.Value)
	bw.buf = BitCode{}
	if _, err := bw.w.Write(bw.word[:]); err != nil {
		bw.err = errors.Wrap(err, "")
	}
}

// A BitReader unpacks bits from 64-bit words written by a BitWriter, most significant bit first.
type BitReader struct {
	r    io.Reader
	buf  BitCode
	word [wordBytes]byte
}

// NewBitReader returns a BitReader reading words from r.
func NewBitReader(r io.Reader) *BitReader {
	return &BitReader{r: r}
}

// ReadBit moves the next bit of the stream onto the end of dst.
// It returns io.EOF when no further word is available, and io.ErrUnexpectedEOF when the stream ends within a word.
func (br *BitReader) ReadBit(dst *BitCode) error {
	if br.buf.Length == 0 {
		if err := br.fill(); err != nil {
			return err
		}
	}
	dst.takeFrom(&br.buf)
	return nil
}

// ReadBits reads the next n bits, 0 <= n <= 64.
func (br *BitReader) ReadBits(n int) (BitCode, error) {
	var code BitCode
	for code.Length < n {
		if err := br.ReadBit(&code); err != nil {
			return code, err
		}
	}
	return code, nil
}

func (br *BitReader) fill() error {
	if _, err := io.ReadFull(br.r, br.word[:]); err != nil {
		return err
	}
	br.buf = BitCode{Length: maxBits, Value: binary.NativeEndian.Uint64(br.word[:])}
	return nil
}
