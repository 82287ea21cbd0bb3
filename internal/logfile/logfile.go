// Package logfile reads the FDR logs named on a command line.
package logfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/record"
)

// Stdin is the path that selects standard input.
const Stdin = `-`

// Log is a whole FDR log held in memory along with its decoded header.
type Log struct {
	Header encoding.Header
	Size   int
	Path   string
	Name   string
	Data   []byte
}

// Read reads the log at path from r.
func Read(path string, r io.Reader) (*Log, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf(`read %v: %w`, path, err)
	}
	hdr, err := encoding.DecodeHeader(encoding.NewCursor(data))
	if err != nil {
		return nil, fmt.Errorf(`read %v: header: %w`, path, err)
	}
	return &Log{hdr, len(data), path, filepath.Base(path), data}, nil
}

// Open reads the log file at path.
func Open(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(path, f)
}

// Load reads each path in order, Stdin reading from stdin. No paths reads a
// single log from stdin.
func Load(paths []string, stdin io.Reader) (out LogList, err error) {
	if len(paths) == 0 {
		paths = []string{Stdin}
	}
	for _, path := range paths {
		var l *Log
		if path == Stdin {
			l, err = Read(`stdin`, stdin)
		} else {
			l, err = Open(path)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return
}

// Version returns the version declared in the log header.
func (l Log) Version() record.Version {
	return l.Header.Version
}

// Decoder returns a Decoder over the log data.
func (l Log) Decoder() *encoding.Decoder {
	return encoding.NewDecoder(bytes.NewReader(l.Data))
}

// LogList is the logs of a command line in the order they were named.
type LogList []*Log

// String implements fmt.Stringer with the names of the logs.
func (s LogList) String() string {
	var buf bytes.Buffer
	if len(s) == 0 {
		return `LogList()`
	}

	buf.WriteString(`LogList(` + s[0].Name)
	for _, l := range s[1:] {
		buf.WriteString(`, ` + l.Name)
	}
	return buf.String() + `)`
}

// ByVersion returns the logs whose header declares version ver.
func (s LogList) ByVersion(ver record.Version) (out LogList) {
	for _, l := range s {
		if l.Version() == ver {
			out = append(out, l)
		}
	}
	return
}
