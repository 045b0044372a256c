// Command rows-inspect packs pre-encoded rows into row buffers and reports on
// their Arrow exports.
//
// Each input line is one encoded row. Rows are read from the files named on
// the command line, or from stdin when there are none.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/daBlesr/polars/pkg/row"
)

type config struct {
	Rows     row.Config  `yaml:"rows"`
	LogLevel dslog.Level `yaml:"log_level"`

	configFile string
	mode       string
	hex        bool
	output     string
}

func (cfg *config) registerFlags(f *flag.FlagSet) {
	cfg.Rows.RegisterFlags(f)
	cfg.LogLevel.RegisterFlags(f)

	f.StringVar(&cfg.configFile, "config.file", "", "YAML file to load configuration from. Flags override values from the file.")
	f.StringVar(&cfg.mode, "mode", string(modeBorrow), "Export to run on each row buffer: borrow, array or binview.")
	f.BoolVar(&cfg.hex, "hex", false, "Input rows are hex encoded.")
	f.StringVar(&cfg.output, "output", "", "Write the exported arrays to this Arrow IPC file.")
}

// parseConfig parses flags, loads the config file they name, then parses the
// flags again so they take precedence over the file.
func parseConfig(fs *flag.FlagSet, args []string) (*config, error) {
	var cfg config
	cfg.registerFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.configFile != "" {
		buf, err := os.ReadFile(cfg.configFile)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", cfg.configFile)
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := cfg.Rows.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rows config")
	}
	if _, err := parseMode(cfg.mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg, err := parseConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, cfg.LogLevel.Option)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	if err := run(cfg, inputs, logger); err != nil {
		level.Error(logger).Log("msg", "inspecting rows failed", "err", err)
		os.Exit(1)
	}
}
