package fdrgen

import "github.com/cstockton/go-xray/record"

// RecordSource pairs a record with its encoded form, written out by hand from
// the FDR layouts rather than produced by the encoder.
type RecordSource struct {
	Record record.Record
	Source []byte
}

// SourceList is a set of RecordSources valid for one version.
type SourceList struct {
	Version record.Version
	Sources []RecordSource
}

// Sources holds the hand encoded records of each version with a distinct
// layout.
var Sources = []SourceList{SourcesV1, SourcesV2, SourcesV3, SourcesV5}

// meta builds a 16 byte metadata record from a discriminant and the leading
// bytes of its body, followed by any trailing event data.
func meta(discriminant byte, body []byte, data ...byte) []byte {
	out := make([]byte, 16, 16+len(data))
	out[0] = discriminant
	copy(out[1:], body)
	return append(out, data...)
}

var SourcesV1 = SourceList{record.Version1, []RecordSource{
	{record.NewBuffer{TID: 1},
		meta(0x01, []byte{0x01, 0x00, 0x00, 0x00})},
	{record.Wallclock{Seconds: 2, Nanos: 3},
		meta(0x09, []byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0x03, 0, 0, 0})},
	{record.NewCPUID{CPU: 4},
		meta(0x05, []byte{0x04, 0x00})},
	{record.Function{Type: record.FuncEnter, FuncID: 1, Delta: 5},
		[]byte{0x10, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00}},
	{record.Function{Type: record.FuncExit, FuncID: 1, Delta: 7},
		[]byte{0x12, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}},
	{record.CustomEvent{Size: 2, TSC: 9, Data: []byte(`hi`)},
		meta(0x0b, []byte{0x02, 0, 0, 0, 0x09, 0, 0, 0, 0, 0, 0, 0}, 'h', 'i')},
	{record.TypedEvent{Size: 1, Delta: 2, EventType: 3, Data: []byte(`z`)},
		meta(0x11, []byte{0x01, 0, 0, 0, 0x02, 0, 0, 0, 0x03, 0x00}, 'z')},
	{record.EndOfBuffer{},
		meta(0x03, nil)},
}}

var SourcesV2 = SourceList{record.Version2, []RecordSource{
	{record.BufferExtents{Size: 48},
		meta(0x0f, []byte{0x30, 0, 0, 0, 0, 0, 0, 0})},
	{record.NewBuffer{TID: 2},
		meta(0x01, []byte{0x02, 0x00, 0x00, 0x00})},
	{record.TSCWrap{BaseTSC: 0x0102030405060708},
		meta(0x07, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01})},
	{record.Function{Type: record.FuncEnterArgs, FuncID: 0x123, Delta: 1},
		[]byte{0x36, 0x12, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	{record.CallArg{Arg: 42},
		meta(0x0d, []byte{0x2a})},
	{record.Function{Type: record.FuncTailExit, FuncID: 0x123, Delta: 2},
		[]byte{0x34, 0x12, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}},
	{record.CustomEvent{Size: 1, TSC: 0xff, Data: []byte(`!`)},
		meta(0x0b, []byte{0x01, 0, 0, 0, 0xff, 0, 0, 0, 0, 0, 0, 0}, '!')},
}}

var SourcesV3 = SourceList{record.Version3, []RecordSource{
	{record.NewCPUID{CPU: 3, TSC: 0x10},
		meta(0x05, []byte{0x03, 0x00, 0x10, 0, 0, 0, 0, 0, 0, 0})},
	{record.CustomEvent{Size: 1, TSC: 0x20, CPU: 3, Data: []byte(`x`)},
		meta(0x0b, []byte{0x01, 0, 0, 0, 0x20, 0, 0, 0, 0, 0, 0, 0, 0x03, 0x00}, 'x')},
	{record.Function{Type: record.FuncExit, FuncID: 0xfffffff, Delta: 0xffffffff},
		[]byte{0xf2, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
}}

var SourcesV5 = SourceList{record.Version5, []RecordSource{
	{record.BufferExtents{Size: 0x100},
		meta(0x0f, []byte{0x00, 0x01, 0, 0, 0, 0, 0, 0})},
	{record.NewBuffer{TID: -1},
		meta(0x01, []byte{0xff, 0xff, 0xff, 0xff})},
	{record.NewCPUID{CPU: 0x0102, TSC: 1},
		meta(0x05, []byte{0x02, 0x01, 0x01, 0, 0, 0, 0, 0, 0, 0})},
	{record.CustomEventV5{Size: 3, Delta: 4, Data: []byte(`abc`)},
		meta(0x0b, []byte{0x03, 0, 0, 0, 0x04, 0, 0, 0}, 'a', 'b', 'c')},
	{record.TypedEvent{Size: 2, Delta: -1, EventType: 7, Data: []byte(`ok`)},
		meta(0x11, []byte{0x02, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0x07, 0x00}, 'o', 'k')},
	{record.Function{Type: record.FuncEnter, FuncID: 2, Delta: 0},
		[]byte{0x20, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
}}
