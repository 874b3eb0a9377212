package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/fumin/lzh"
	"github.com/fumin/lzh/config"
)

var log = logging.MustGetLogger("compress")

func main() {
	c := config.Default()
	config.RegisterFlags(flag.CommandLine, &c)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
		flag.PrintDefaults()
	}
	if err := config.Parse(flag.CommandLine, os.Args[1:], &c); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	config.StartLogging("compress", c.Verbose)

	name := flag.Arg(0)
	if name == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(name, c.Capacity); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(name string, capacity int) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(os.Stdout)
	if err := lzh.Compress(w, bufio.NewReader(f), capacity); err != nil {
		return errors.Wrap(err, name)
	}
	return errors.Wrap(w.Flush(), "")
}
