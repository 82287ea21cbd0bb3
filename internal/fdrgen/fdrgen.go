// Package fdrgen generates synthetic FDR logs for tests, benchmarks and the
// command line tools.
package fdrgen

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/record"
)

// Generator builds a deterministic log of Threads buffers, each holding Calls
// function entry and exit pairs plus the bookkeeping records of the
// version.
type Generator struct {
	Version record.Version
	Threads int
	Calls   int
	Seed    int64
}

// New returns a Generator with small defaults for version v.
func New(v record.Version) *Generator {
	return &Generator{Version: v, Threads: 2, Calls: 8, Seed: 1}
}

// Header returns the header of the generated log. Version1 logs declare the
// fixed buffer size needed to hold the largest generated buffer.
func (g *Generator) Header() encoding.Header {
	return encoding.NewHeader(g.Version, uint64(g.bufferSize()))
}

// Buffers returns the records of each thread buffer in order.
func (g *Generator) Buffers() [][]record.Record {
	rng := rand.New(rand.NewSource(g.Seed))
	out := make([][]record.Record, 0, max(g.Threads, 0))
	for tid := 1; tid <= g.Threads; tid++ {
		out = append(out, g.buffer(rng, int32(tid)))
	}
	return out
}

// Records returns the records of all buffers in the order they are written.
func (g *Generator) Records() []record.Record {
	var out []record.Record
	for _, buf := range g.Buffers() {
		out = append(out, buf...)
	}
	return out
}

// Validate returns an error if the Generator can not build a log.
func (g *Generator) Validate() error {
	switch {
	case !g.Version.Valid():
		return fmt.Errorf(`fdrgen: can not generate %v`, g.Version)
	case g.Threads < 0:
		return fmt.Errorf(`fdrgen: negative thread count %d`, g.Threads)
	case g.Calls < 0:
		return fmt.Errorf(`fdrgen: negative call count %d`, g.Calls)
	}
	return nil
}

// Bytes returns the encoded log.
func (g *Generator) Bytes() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	bufs, err := g.encodeBuffers()
	if err != nil {
		return nil, err
	}

	hdr := g.Header()
	out := encoding.AppendHeader(nil, hdr)
	size := int(hdr.BufferSize())
	for _, b := range bufs {
		out = append(out, b...)
		if size > 0 {
			// Version1 buffers are written whole, unused bytes are zero.
			out = append(out, make([]byte, size-len(b))...)
		}
	}
	return out, nil
}

// Run writes the encoded log to w.
func (g *Generator) Run(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := g.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (g *Generator) bufferSize() int {
	if g.Version != record.Version1 {
		return 0
	}
	bufs, err := g.encodeBuffers()
	if err != nil {
		return 0
	}
	var n int
	for _, b := range bufs {
		if len(b) > n {
			n = len(b)
		}
	}
	// Round up so the padding is visible in every buffer.
	return (n/64 + 1) * 64
}

func (g *Generator) encodeBuffers() ([][]byte, error) {
	hdr := encoding.NewHeader(g.Version, 0)
	var out [][]byte
	for i, buf := range g.Buffers() {
		var b []byte
		for _, rec := range buf {
			var err error
			if b, err = encoding.AppendRecord(b, hdr, rec); err != nil {
				return nil, fmt.Errorf(`buffer %d record %v: %w`, i, rec, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (g *Generator) buffer(rng *rand.Rand, tid int32) []record.Record {
	recs := []record.Record{
		record.NewBuffer{TID: tid},
		record.Wallclock{Seconds: uint64(1500000000 + rng.Intn(1e6)), Nanos: uint32(rng.Intn(1e9))},
	}

	cpu := record.NewCPUID{CPU: uint16(rng.Intn(64))}
	if g.Version >= record.Version3 {
		cpu.TSC = uint64(rng.Int63())
	}
	recs = append(recs, cpu, record.TSCWrap{BaseTSC: uint64(rng.Int63())})

	for i := 0; i < g.Calls; i++ {
		id := int32(rng.Intn(1 << 16))
		if i%3 == 0 {
			recs = append(recs,
				record.Function{Type: record.FuncEnterArgs, FuncID: id, Delta: uint32(rng.Intn(1000))},
				record.CallArg{Arg: rng.Uint64()})
		} else {
			recs = append(recs, record.Function{Type: record.FuncEnter, FuncID: id, Delta: uint32(rng.Intn(1000))})
		}

		if i%4 == 1 {
			recs = append(recs, g.event(rng, i))
		}

		exit := record.FuncExit
		if i%5 == 4 {
			exit = record.FuncTailExit
		}
		recs = append(recs, record.Function{Type: exit, FuncID: id, Delta: uint32(rng.Intn(1000))})
	}

	if g.Version >= record.Version2 {
		var size uint64
		hdr := encoding.NewHeader(g.Version, 0)
		for _, rec := range recs {
			b, _ := encoding.AppendRecord(nil, hdr, rec)
			size += uint64(len(b))
		}
		recs = append([]record.Record{record.BufferExtents{Size: size}}, recs...)
	} else {
		recs = append(recs, record.EndOfBuffer{})
	}
	return recs
}

// event returns a custom or typed event appropriate for the version.
func (g *Generator) event(rng *rand.Rand, i int) record.Record {
	data := []byte(fmt.Sprintf(`event-%d`, i))
	size := int32(len(data))
	switch {
	case i%8 == 5:
		return record.TypedEvent{Size: size, Delta: int32(rng.Intn(100)), EventType: uint16(i), Data: data}
	case g.Version >= record.Version5:
		return record.CustomEventV5{Size: size, Delta: int32(rng.Intn(100)), Data: data}
	default:
		ev := record.CustomEvent{Size: size, TSC: uint64(rng.Int63()), Data: data}
		if g.Version >= record.Version3 {
			ev.CPU = uint16(rng.Intn(64))
		}
		return ev
	}
}
