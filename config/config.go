// Package config holds the settings shared by the lzh commands.
//
// The precedence is:
//   command line flags > environment > configuration file > defaults
package config

import (
	"flag"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/fumin/lzh/lz78"
)

// Configuration specifies the complete lzh configuration.
type Configuration struct {
	Capacity int     `toml:"capacity"`
	Verbose  bool    `toml:"verbose"`
	Cluster  Cluster `toml:"cluster"`
}

// Cluster specifies options of the cluster command.
type Cluster struct {
	Intelligence string `toml:"intelligence"`
	Dir          string `toml:"dir"`
	CacheSize    int    `toml:"cache_size"`
}

// DefaultConfigFile is read when no -config flag or LZH_CONFIG variable names another file.
const DefaultConfigFile = "/etc/lzh/lzh.toml"

// Default returns the configuration used when nothing is set.
func Default() Configuration {
	return Configuration{
		Capacity: lz78.DefaultCapacity,
		Cluster: Cluster{
			Intelligence: "lzh",
			Dir:          "data",
			CacheSize:    1024,
		},
	}
}

// RegisterFlags defines the flags common to all commands on fs, storing into c.
func RegisterFlags(fs *flag.FlagSet, c *Configuration) {
	fs.String("config", "", "configuration file")
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "phrase table capacity, at most 255")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "verbosity")
}

// RegisterClusterFlags defines the cluster command's flags on fs, storing into c.
func RegisterClusterFlags(fs *flag.FlagSet, c *Configuration) {
	fs.StringVar(&c.Cluster.Intelligence, "i", c.Cluster.Intelligence, "intelligence type, lzh or gzip")
	fs.StringVar(&c.Cluster.Dir, "d", c.Cluster.Dir, "data directory")
	fs.IntVar(&c.Cluster.CacheSize, "cache", c.Cluster.CacheSize, "number of compressed sizes to cache")
}

// Parse fills c from the configuration file, fs parsed from args, and the environment, in increasing precedence.
// Flags must have been registered with the current values of c as defaults.
func Parse(fs *flag.FlagSet, args []string, c *Configuration) error {
	if err := parseConfigFile(findConfigFile(args), c); err != nil {
		return errors.Wrap(err, "")
	}
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "")
	}
	if err := setUnsetFlagsFromEnv(fs); err != nil {
		return errors.Wrap(err, "")
	}
	if c.Capacity < 0 || c.Capacity > lz78.MaxCapacity {
		return errors.Wrapf(lz78.ErrCapacity, "%d", c.Capacity)
	}
	return nil
}

// We want to parse the flags after we've read in the config file so that they
// take precedence, so we're going to extract the config file flag directly.
func findConfigFile(args []string) string {
	configRx := regexp.MustCompile("^--?config(?:=(.*))?$")
	for index, arg := range args {
		match := configRx.FindStringSubmatch(arg)
		if match == nil {
			continue
		}
		if match[1] != "" {
			return match[1]
		}
		if len(args) > (index + 1) {
			return args[index+1]
		}
	}
	return envValueForFlag("config")
}

func parseConfigFile(configFile string, c *Configuration) error {
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	// A file value is a new default: decode into a copy and let flags registered on c see it.
	decoded := *c
	_, err := toml.DecodeFile(configFile, &decoded)
	if os.IsNotExist(err) && !explicit {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "config file %s", configFile)
	}
	*c = decoded
	return nil
}

func setUnsetFlagsFromEnv(fs *flag.FlagSet) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] || err != nil {
			return
		}
		if val := envValueForFlag(f.Name); val != "" {
			err = errors.Wrapf(fs.Set(f.Name, val), "environment %s", envKey(f.Name))
		}
	})
	return err
}

func envKey(name string) string {
	return "LZH_" + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}

func envValueForFlag(name string) string {
	return os.Getenv(envKey(name))
}
