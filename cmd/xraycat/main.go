package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cstockton/go-xray/internal/config"
	"github.com/cstockton/go-xray/internal/fdrgen"
	"github.com/cstockton/go-xray/internal/logfile"
	"github.com/cstockton/go-xray/internal/logging"
	"github.com/cstockton/go-xray/record"
)

type options struct {
	configPath string
	logLevel   string
	generate   bool
	version    uint16
	threads    int
	calls      int
	kinds      []string
	maxRecords int
	only       uint16
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "xraycat [flags...] [log files...]",
		Short: "Print the records of XRay FDR logs",
		Long: `Small utility for example purposes, for more info see:

  https://github.com/cstockton/go-xray`,
		Example: `  # Generate a log to test with
  xraycat -g > test.xray

  # If no log files given, read stdin
  cat test.xray | xraycat

  # If log files are given, read each log file
  xraycat test.xray test.xray

  # Or stdin & log files with "-" in place of stdin
  xraycat - test.xray

  # Only print function and typed event records
  xraycat --kind function,typedevent test.xray`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-records") {
				cfg.Decode.MaxRecords = opts.maxRecords
			}
			lc := cfg.Log.Logging()
			lc.Out = stderr
			if lvl, ok := logging.ParseLevel(opts.logLevel); ok {
				lc.Level = lvl
			}
			logger := logging.New("xraycat", lc)

			if opts.generate {
				return generate(cmd.Context(), stdout, logger, opts)
			}
			filter, err := kindFilter(opts.kinds)
			if err != nil {
				return err
			}
			return cat(stdin, stdout, logger, cfg.Decode, filter, record.Version(opts.only), args)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flags.BoolVarP(&opts.generate, "generate", "g", false, "send a generated log to test with to stdout")
	flags.Uint16Var(&opts.version, "version", uint16(record.Latest), "log version to generate")
	flags.IntVarP(&opts.threads, "count", "c", 2, "how many thread buffers to generate")
	flags.IntVar(&opts.calls, "calls", 8, "how many function calls to generate per buffer")
	flags.StringSliceVarP(&opts.kinds, "kind", "k", nil, "only print records of these kinds")
	flags.IntVarP(&opts.maxRecords, "max-records", "n", 0, "stop after this many records per log, 0 for no limit")
	flags.Uint16Var(&opts.only, "only-version", 0, "only print logs of this version, 0 for all")
	return cmd
}

func generate(ctx context.Context, w io.Writer, logger zerolog.Logger, opts options) error {
	v := record.Version(opts.version)
	if !v.Valid() {
		return fmt.Errorf("can not generate %v", v)
	}
	g := fdrgen.New(v)
	g.Threads, g.Calls = opts.threads, opts.calls
	if err := g.Validate(); err != nil {
		return err
	}
	logger.Debug().Stringer("version", v).Int("threads", g.Threads).Int("calls", g.Calls).Msg("generating log")
	return g.Run(ctx, w)
}

func kindFilter(names []string) (func(record.Kind) bool, error) {
	if len(names) == 0 {
		return func(record.Kind) bool { return true }, nil
	}
	want := make(map[record.Kind]bool)
	for _, name := range names {
		k, ok := record.ParseKind(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown record kind %q", name)
		}
		want[k] = true
	}
	return func(k record.Kind) bool { return want[k] }, nil
}

func cat(stdin io.Reader, w io.Writer, logger zerolog.Logger, cfg config.DecodeConfig, filter func(record.Kind) bool, only record.Version, args []string) error {
	logs, err := logfile.Load(args, stdin)
	if err != nil {
		return err
	}
	if only != 0 {
		logs = logs.ByVersion(only)
		logger.Debug().Stringer("version", only).Stringer("logs", logs).Msg("filtered logs by version")
	}

	var failed int
	for _, l := range logs {
		logger.Info().Str("log", l.Path).Stringer("version", l.Version()).Int("size", l.Size).Msg("decoding")

		var count int
		dec := l.Decoder()
		for dec.More() {
			if cfg.MaxRecords > 0 && count >= cfg.MaxRecords {
				logger.Debug().Int("max_records", cfg.MaxRecords).Msg("record limit reached")
				break
			}
			off := dec.Off()
			rec, err := dec.Decode()
			if err != nil {
				break // err will be in Err()
			}
			count++
			if filter(rec.Kind()) {
				fmt.Fprintf(w, "0x%08x %v\n", off, rec)
			}
		}
		if err := dec.Err(); err != nil {
			logger.Error().Err(err).Str("log", l.Path).Int("records", count).Msg("decode failed")
			if cfg.StopOnError {
				return fmt.Errorf("%v: %w", l.Path, err)
			}
			failed++
			continue
		}
		logger.Debug().Str("log", l.Path).Int("records", count).Msg("decoded")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d logs failed to decode", failed, len(logs))
	}
	return nil
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
