package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/lzh/lz78"
)

func newFlagSet(c *Configuration) *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, c)
	RegisterClusterFlags(fs, c)
	return fs
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "lzh.toml")
	if err := os.WriteFile(name, []byte(contents), 0644); err != nil {
		t.Fatalf("%v", err)
	}
	return name
}

func TestParseDefaults(t *testing.T) {
	c := Default()
	if err := Parse(newFlagSet(&c), []string{"file"}, &c); err != nil {
		t.Fatalf("%v", err)
	}
	if c.Capacity != lz78.DefaultCapacity || c.Verbose || c.Cluster.Intelligence != "lzh" {
		t.Errorf("%+v", c)
	}
}

func TestParsePrecedence(t *testing.T) {
	name := writeConfig(t, `
capacity = 100
verbose = true

[cluster]
intelligence = "gzip"
cache_size = 7
`)
	t.Setenv("LZH_CACHE", "9")
	t.Setenv("LZH_D", "fromenv")

	c := Default()
	args := []string{"-config", name, "-capacity=12", "file"}
	if err := Parse(newFlagSet(&c), args, &c); err != nil {
		t.Fatalf("%v", err)
	}
	if c.Capacity != 12 {
		t.Errorf("flag should win over file: %d", c.Capacity)
	}
	if !c.Verbose || c.Cluster.Intelligence != "gzip" {
		t.Errorf("file should win over defaults: %+v", c)
	}
	if c.Cluster.CacheSize != 9 || c.Cluster.Dir != "fromenv" {
		t.Errorf("environment should win over file: %+v", c)
	}
}

func TestFindConfigFile(t *testing.T) {
	cases := map[string][]string{
		"a.toml": {"-config=a.toml"},
		"b.toml": {"--config", "b.toml"},
		"":       {"-capacity", "3"},
	}
	for want, args := range cases {
		if got := findConfigFile(args); got != want {
			t.Errorf("%v: %q", args, got)
		}
	}
}

func TestParseMissingExplicitFile(t *testing.T) {
	c := Default()
	args := []string{"-config", filepath.Join(t.TempDir(), "missing.toml")}
	if err := Parse(newFlagSet(&c), args, &c); err == nil {
		t.Errorf("expected error")
	}
}

func TestParseCapacityRange(t *testing.T) {
	c := Default()
	if err := Parse(newFlagSet(&c), []string{"-capacity", "256"}, &c); errors.Cause(err) != lz78.ErrCapacity {
		t.Errorf("%v", err)
	}
}
