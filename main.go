package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/TaihuLight/partecl-codegen/codegen"
	"github.com/TaihuLight/partecl-codegen/config"
	"github.com/TaihuLight/partecl-codegen/declaration"
	"github.com/TaihuLight/partecl-codegen/logger"
	"github.com/TaihuLight/partecl-codegen/metrics"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	logger.Flush()
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Err(err).Msg("could not generate harness")
		logger.Flush()
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		bi := config.GetBuildInfo()
		_, err := fmt.Fprintf(stdout, "partecl-codegen %s / %s\n", bi.Tag, bi.Time)
		return err
	}
	log.Debug().Interface("config", cfg).Msg("starting")

	m, err := declaration.LoadManifest(cfg.Generator.ManifestPath)
	if err != nil {
		return err
	}
	if err := m.Validate(cfg.Names); err != nil {
		return err
	}

	start := time.Now()
	summary, err := generate(cfg, m, stdout)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.Info().
		Str("manifest", cfg.Generator.ManifestPath).
		Str("output", cfg.Generator.OutputPath).
		Int("inputs", len(m.Inputs)).
		Int("stdin", len(m.Stdin)).
		Int("results", len(m.Results)).
		Int("advisories", summary.Advisories).
		Dur("elapsed", elapsed).
		Msg("harness generated")

	if cfg.Generator.MetricsTextfile != "" {
		c := metrics.NewCollector()
		c.Observe(summary, elapsed)
		if err := c.WriteTextfile(cfg.Generator.MetricsTextfile); err != nil {
			return fmt.Errorf("could not write metrics: %w", err)
		}
	}
	return nil
}

// createOutput opens the output file, replaced in tests
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func generate(cfg *config.Config, m *declaration.Manifest, stdout io.Writer) (codegen.Summary, error) {
	if cfg.Generator.OutputPath == "" {
		return emit(cfg, m, stdout)
	}
	f, err := createOutput(cfg.Generator.OutputPath)
	if err != nil {
		return codegen.Summary{}, fmt.Errorf("could not create output: %w", err)
	}
	summary, err := emitClose(cfg, m, f)
	if err != nil {
		/* do not leave a truncated harness behind */
		if rerr := os.Remove(cfg.Generator.OutputPath); rerr != nil {
			log.Warn().Err(rerr).Str("output", cfg.Generator.OutputPath).Msg("could not remove output")
		}
	}
	return summary, err
}

// emitClose writes the harness into wc and closes it, the first error is returned
func emitClose(cfg *config.Config, m *declaration.Manifest, wc io.WriteCloser) (summary codegen.Summary, err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close output: %w", cerr)
		}
	}()
	return emit(cfg, m, wc)
}

func emit(cfg *config.Config, m *declaration.Manifest, w io.Writer) (codegen.Summary, error) {
	bw := bufio.NewWriter(w)
	gen := codegen.New(bw, codegen.Options{
		Names:       cfg.Names,
		Diagnostics: cfg.Generator.Diagnostics,
	})
	if err := gen.Harness(m, cfg.Generator.EmitStructs); err != nil {
		return codegen.Summary{}, err
	}
	if err := bw.Flush(); err != nil {
		return codegen.Summary{}, fmt.Errorf("could not write generated code: %w", err)
	}
	return gen.Summary(), nil
}
