// Package lzh provides a two stage lossless compressor.
// The first stage substitutes repeated phrases with one byte back-references (package lz78),
// the second stage Huffman codes the result (package huffman).
//
// Below is an example of compressing Lincoln's Gettysburg address:
//    go run compress/main.go gettysburg.txt > gettys.lzh
//    cat gettys.lzh | go run decompress/main.go > gettys.dlzh
//    diff gettysburg.txt gettys.dlzh
//
// The phrase table capacity is not stored in the compressed stream, both sides must use the same value.
// The packed words are in the host's byte order, so a stream only decompresses on a machine of the same endianness.
package lzh

import (
	"bytes"
	"io"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/fumin/lzh/huffman"
	"github.com/fumin/lzh/lz78"
)

var log = logging.MustGetLogger("lzh")

// Compress reads r until it is exhausted and writes its compressed form to w.
// capacity is the phrase table capacity of the substitution stage, see lz78.MaxCapacity.
func Compress(w io.Writer, r io.Reader, capacity int) error {
	staged := bytes.NewBuffer(nil)
	if _, err := lz78.Encode(staged, r, capacity); err != nil {
		return errors.Wrap(err, "")
	}
	substituted := staged.Len()

	counter := &countingWriter{w: w}
	if err := huffman.Encode(counter, staged); err != nil {
		return errors.Wrap(err, "")
	}
	log.Debugf("compress: %d substituted bytes, %d output bytes", substituted, counter.n)
	return nil
}

// Decompress reverses Compress, reading the compressed stream from r.
// capacity must equal the value used to compress.
func Decompress(w io.Writer, r io.Reader, capacity int) error {
	staged := bytes.NewBuffer(nil)
	if err := huffman.Decode(staged, r); err != nil {
		return errors.Wrap(err, "")
	}
	log.Debugf("decompress: %d substituted bytes", staged.Len())

	if _, err := lz78.Decode(w, staged, capacity); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// CompressedSize returns the length of the compressed form of p.
func CompressedSize(p []byte, capacity int) (int64, error) {
	counter := &countingWriter{w: io.Discard}
	if err := Compress(counter, bytes.NewReader(p), capacity); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
