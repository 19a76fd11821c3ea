// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"math"
	"testing"
)

type sampleRequest struct {
	Action string `cbor:"action"`
	SQL    string `cbor:"sql,omitempty"`
}

type sampleResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func TestMarshalDeterministic(t *testing.T) {
	request := sampleRequest{Action: "query", SQL: "SELECT 1"}

	first, err := Marshal(request)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 50 {
		again, err := Marshal(request)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal is not deterministic")
		}
	}

	// Map key order must not leak into the encoding.
	a, _ := Marshal(map[string]any{"a": 1, "b": 2, "c": 3})
	b, _ := Marshal(map[string]any{"c": 3, "a": 1, "b": 2})
	if !bytes.Equal(a, b) {
		t.Error("maps with equal contents encoded differently")
	}
}

func TestRowValuesKeepStorageClasses(t *testing.T) {
	original := sampleResult{
		Columns: []string{"id", "ratio", "name", "blob", "missing"},
		Rows: [][]any{
			{int64(1), 0.5, "alpha", []byte{0x00, 0xff}, nil},
			{int64(-7), math.Inf(1), "", []byte{}, nil},
			{int64(math.MaxInt64), -0.25, "ünïcode", []byte("x"), nil},
		},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleResult
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(decoded.Rows) != len(original.Rows) {
		t.Fatalf("decoded %d rows, want %d", len(decoded.Rows), len(original.Rows))
	}
	for i, row := range decoded.Rows {
		want := original.Rows[i]
		if id, ok := row[0].(int64); !ok || id != want[0].(int64) {
			t.Errorf("row %d id = %#v, want int64 %d", i, row[0], want[0])
		}
		if ratio, ok := row[1].(float64); !ok || ratio != want[1].(float64) {
			t.Errorf("row %d ratio = %#v, want float64 %v", i, row[1], want[1])
		}
		if name, ok := row[2].(string); !ok || name != want[2].(string) {
			t.Errorf("row %d name = %#v, want %q", i, row[2], want[2])
		}
		if blob, ok := row[3].([]byte); !ok || !bytes.Equal(blob, want[3].([]byte)) {
			t.Errorf("row %d blob = %#v, want %v", i, row[3], want[3])
		}
		if row[4] != nil {
			t.Errorf("row %d missing = %#v, want nil", i, row[4])
		}
	}
}

func TestUntypedMapsDecodeWithStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"state": "open-resolved", "page_size": 4096})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if fields["page_size"] != int64(4096) {
		t.Errorf("page_size = %#v, want int64 4096", fields["page_size"])
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	requests := []sampleRequest{
		{Action: "status"},
		{Action: "query", SQL: "SELECT count(*) FROM t"},
	}
	for _, request := range requests {
		if err := encoder.Encode(request); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range requests {
		var got sampleRequest
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode #%d: %v", i, err)
		}
		if got != want {
			t.Errorf("Decode #%d = %+v, want %+v", i, got, want)
		}
	}
}

func TestRawMessageDelaysDecoding(t *testing.T) {
	inner, _ := Marshal(sampleResult{Columns: []string{"n"}, Rows: [][]any{{int64(3)}}})
	envelope := struct {
		OK   bool       `cbor:"ok"`
		Data RawMessage `cbor:"data"`
	}{OK: true, Data: inner}

	data, err := Marshal(envelope)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		OK   bool       `cbor:"ok"`
		Data RawMessage `cbor:"data"`
	}
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	var result sampleResult
	if err := Unmarshal(decoded.Data, &result); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if len(result.Columns) != 1 || result.Columns[0] != "n" || result.Rows[0][0] != int64(3) {
		t.Errorf("result = %+v", result)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var request sampleRequest
	if err := Unmarshal([]byte{0xff, 0xfe, 0xfd}, &request); err == nil {
		t.Fatal("expected error for invalid CBOR")
	}
}
