package config

import (
	"os"

	"github.com/op/go-logging"
)

const formatSpec = "%{level:8s} %{module:-12s} | %{message}"

// StartLogging sends log records to stderr, prefixed with progName.
// Records below INFO are dropped unless verbose is set.
func StartLogging(progName string, verbose bool) logging.LeveledBackend {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatter := logging.MustStringFormatter(formatSpec)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	}
	logging.SetBackend(leveled)
	return leveled
}
