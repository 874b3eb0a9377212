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

var log = logging.MustGetLogger("decompress")

func main() {
	c := config.Default()
	config.RegisterFlags(flag.CommandLine, &c)
	if err := config.Parse(flag.CommandLine, os.Args[1:], &c); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	config.StartLogging("decompress", c.Verbose)

	if err := run(c.Capacity); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(capacity int) error {
	w := bufio.NewWriter(os.Stdout)
	if err := lzh.Decompress(w, bufio.NewReader(os.Stdin), capacity); err != nil {
		return errors.Wrap(err, "")
	}
	return errors.Wrap(w.Flush(), "")
}
