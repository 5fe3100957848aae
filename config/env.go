package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

var (
	// EnvPrefix defines name prefix for environment variables
	// with struct-path selector and value, for example:
	//    HARNESSGEN_NAMES_INPUT=kernel_input
	EnvPrefix = "HARNESSGEN_"
	// ConfigEnv defines environment variable for config file path, overrides the ConfigName
	ConfigEnv = "HARNESSGEN_CONFIG"
	// ConfigName defines default filename for look in work directory if ConfigEnv is empty
	ConfigName = "harnessgen.yaml"
)

// newFlagSet binds flags to cfg fields, the current values become defaults
func newFlagSet(cfg *Config, configPath *string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("partecl-codegen", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: partecl-codegen [flags] [manifest]\n\nFlags:\n")
		flags.PrintDefaults()
	}
	flags.StringVar(configPath, "config", *configPath,
		fmt.Sprintf(`config file path, overrides $%s`, ConfigEnv))
	flags.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "print build info and exit")

	g := &cfg.Generator
	flags.StringVarP(&g.ManifestPath, "manifest", "m", g.ManifestPath, "manifest with field declarations")
	flags.StringVarP(&g.OutputPath, "output", "o", g.OutputPath, "file for generated code, stdout if empty")
	flags.BoolVarP(&g.Diagnostics, "diagnostics", "d", g.Diagnostics, "report unrecognized field types")
	flags.BoolVar(&g.EmitStructs, "structs", g.EmitStructs, "emit input and result struct definitions")
	flags.StringVar(&g.MetricsTextfile, "metrics-textfile", g.MetricsTextfile, "file for generation stats in textfile format")

	n := &cfg.Names
	flags.StringVar(&n.Input, "input-struct", n.Input, "struct tag of the input record")
	flags.StringVar(&n.Result, "result-struct", n.Result, "struct tag of the result record")
	flags.StringVar(&n.TestCaseNum, "test-case-num", n.TestCaseNum, "field holding the test case number")
	flags.StringVar(&n.Argc, "argc", n.Argc, "input field holding the argument count")

	l := &cfg.Logging
	flags.VarP(&l.LogLevel, "log-level", "l", "log level: Error|Warn|Info|Debug|Trace")
	flags.BoolVar(&l.LogColors, "log-colors", l.LogColors, "colorize console log")
	flags.DurationVar(&l.LogCondense, "log-condense", l.LogCondense, "condense similar records for the duration, 0 to turn off")
	flags.StringVar(&l.LogFile, "log-file", l.LogFile, "log file in addition to stderr")
	return flags
}

func applyEnv(v ...interface{}) error {
	var ee []error
	for i := range v {
		if err := env.ParseWithOptions(v[i], env.Options{Prefix: EnvPrefix}); err != nil {
			ee = append(ee, err)
		}
	}
	if len(ee) > 0 {
		return errors.Join(ee...)
	}
	return nil
}
