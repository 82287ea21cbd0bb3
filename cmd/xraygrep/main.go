package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/internal/config"
	"github.com/cstockton/go-xray/internal/logfile"
	"github.com/cstockton/go-xray/internal/logging"
	"github.com/cstockton/go-xray/record"
)

type options struct {
	configPath string
	logLevel   string
	regexp     string
	invert     bool
	strip      string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "xraygrep [flags...] [log file]",
		Short: "Filter the records of an XRay FDR log",
		Long: `Small utility for example purposes, for more info see:

  https://github.com/cstockton/go-xray

The filtered log is written to stdout in the format of the input. Buffer
extents are copied as is, so they no longer match a filtered buffer.`,
		Example: `  # Keep only function records and the buffers they belong to
  cat test.xray | xraygrep -r 'Function|NewBuffer' > filtered.xray

  # Filter out unwanted records with -v
  cat test.xray | xraygrep -vr 'CustomEvent|TypedEvent' > filtered.xray

  # Strip a path or security sensitive data from event payloads
  xraygrep -s '/my/private/homedir' test.xray > filtered.xray`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			lc := cfg.Log.Logging()
			lc.Out = stderr
			if lvl, ok := logging.ParseLevel(opts.logLevel); ok {
				lc.Level = lvl
			}
			logger := logging.New("xraygrep", lc)

			var re *regexp.Regexp
			if opts.regexp != "" {
				if re, err = regexp.Compile(opts.regexp); err != nil {
					return fmt.Errorf("regexp: %w", err)
				}
			}
			logs, err := logfile.Load(args, stdin)
			if err != nil {
				return err
			}
			return grep(logs[0], stdout, logger, re, opts)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flags.StringVarP(&opts.regexp, "regexp", "r", "", "regexp to match against the record kind name")
	flags.BoolVarP(&opts.invert, "invert", "v", false, "invert matching, like grep -v")
	flags.StringVarP(&opts.strip, "strip", "s", "", "string to strip from event data before writing")
	return cmd
}

// match reports whether rec is kept.
func match(re *regexp.Regexp, invert bool, rec record.Record) bool {
	if re == nil {
		return true
	}
	return re.MatchString(rec.Kind().Name()) != invert
}

// strip removes s from the data of event records. Events left without data
// are dropped.
func strip(rec record.Record, s []byte) (record.Record, bool) {
	if len(s) == 0 {
		return rec, true
	}
	switch r := rec.(type) {
	case record.CustomEvent:
		r.Data = bytes.ReplaceAll(r.Data, s, nil)
		r.Size = int32(len(r.Data))
		return r, r.Size > 0
	case record.CustomEventV5:
		r.Data = bytes.ReplaceAll(r.Data, s, nil)
		r.Size = int32(len(r.Data))
		return r, r.Size > 0
	case record.TypedEvent:
		r.Data = bytes.ReplaceAll(r.Data, s, nil)
		r.Size = int32(len(r.Data))
		return r, r.Size > 0
	}
	return rec, true
}

func grep(l *logfile.Log, w io.Writer, logger zerolog.Logger, re *regexp.Regexp, opts options) error {
	// Filtered Version1 buffers are no longer padded to a fixed size.
	hdr := l.Header
	if hdr.Version == record.Version1 {
		hdr.FreeForm = [16]byte{}
	}

	var read, kept int
	dec := l.Decoder()
	enc := encoding.NewEncoder(w, hdr)
	for dec.More() {
		rec, err := dec.Decode()
		if err != nil {
			break
		}
		read++
		if !match(re, opts.invert, rec) {
			logger.Trace().Stringer("record", rec).Msg("filtered")
			continue
		}
		var ok bool
		if rec, ok = strip(rec, []byte(opts.strip)); !ok {
			logger.Debug().Int("record", read).Msg("stripped event left empty")
			continue
		}
		if err := enc.Emit(rec); err != nil {
			return err
		}
		kept++
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("%v: %w", l.Path, err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	logger.Info().Str("log", l.Path).Int("read", read).Int("kept", kept).Msg("filtered")
	return nil
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
