// Command batch compresses, or decompresses, every file of a source directory into a destination directory.
// Compressed files get the ".lzh" extension, which decompression strips again.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/fumin/lzh"
	"github.com/fumin/lzh/config"
)

const ext = ".lzh"

var log = logging.MustGetLogger("batch")

var (
	srcDir = flag.String("s", "", "source directory")
	dstDir = flag.String("d", "", "destination directory")
	decode = flag.Bool("x", false, "decompress instead of compress")
)

func main() {
	c := config.Default()
	config.RegisterFlags(flag.CommandLine, &c)
	if err := config.Parse(flag.CommandLine, os.Args[1:], &c); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	config.StartLogging("batch", c.Verbose)

	if err := run(*srcDir, *dstDir, *decode, c.Capacity); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(srcDir, dstDir string, decode bool, capacity int) error {
	srcs, err := os.ReadDir(srcDir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, srcInfo := range srcs {
		src := srcInfo.Name()
		if srcInfo.IsDir() {
			continue
		}

		var dstName string
		var code func(w io.Writer, r io.Reader, capacity int) error
		if decode {
			if filepath.Ext(src) != ext {
				log.Infof("skipping %s", src)
				continue
			}
			dstName = strings.TrimSuffix(src, ext)
			code = lzh.Decompress
		} else {
			dstName = src + ext
			code = lzh.Compress
		}

		if err := convert(filepath.Join(dstDir, dstName), filepath.Join(srcDir, src), code, capacity); err != nil {
			return errors.Wrap(err, src)
		}
		log.Debugf("%s -> %s", src, dstName)
	}
	return nil
}

func convert(dst, src string, code func(w io.Writer, r io.Reader, capacity int) error, capacity int) error {
	r, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	if err := code(bw, bufio.NewReader(r), capacity); err != nil {
		return errors.Wrap(err, "")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return errors.Wrap(w.Close(), "")
}
