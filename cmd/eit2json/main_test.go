package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A record with an empty descriptor loop
var validRecord = []byte{
	0x75, 0x30, // event_id
	0xc0, 0x79, 0x12, 0x45, 0x00, // start_time
	0x01, 0x45, 0x30, // duration
	0x80, 0x00, // running_status, free_CA_mode, descriptors_loop_length
}

// A record whose loop holds an unknown tag with bytes still remaining
var failingRecord = []byte{
	0x75, 0x30,
	0xc0, 0x79, 0x12, 0x45, 0x00,
	0x01, 0x45, 0x30,
	0x80, 0x04,
	0x47, 0x02, 0xaa, 0xbb,
}

func writeFixture(t *testing.T, dir, name string, b []byte) string {
	fn := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(fn, b, 0o644))
	return fn
}

func TestRunSingleFile(t *testing.T) {
	fn := writeFixture(t, t.TempDir(), "one.eit", validRecord)

	buf := &bytes.Buffer{}
	rc := run(buf, []string{fn}, false)
	assert.Equal(t, 0, rc)

	// A single input yields one bare document, no array wrapping
	doc := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, fn, doc["filename"])
	assert.Equal(t, float64(30000), doc["event_id"])
}

func TestRunMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	fn1 := writeFixture(t, dir, "one.eit", validRecord)
	fn2 := writeFixture(t, dir, "two.eit", validRecord)

	buf := &bytes.Buffer{}
	rc := run(buf, []string{fn1, fn2}, false)
	assert.Equal(t, 0, rc)

	var docs []map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	assert.Len(t, docs, 2)
	assert.Equal(t, fn1, docs[0]["filename"])
	assert.Equal(t, fn2, docs[1]["filename"])
	assert.Contains(t, buf.String(), " ,\n")
}

func TestRunSkipsUnreadableAndOversized(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.eit")
	huge := writeFixture(t, dir, "huge.eit", bytes.Repeat([]byte{0x00}, 2001))
	fn := writeFixture(t, dir, "ok.eit", validRecord)

	buf := &bytes.Buffer{}
	rc := run(buf, []string{missing, huge, fn}, false)
	assert.Equal(t, 1, rc)

	// Skipped inputs leave no hole in the array; the remaining file is
	// still emitted
	var docs []map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	assert.Len(t, docs, 1)
	assert.Equal(t, fn, docs[0]["filename"])
}

func TestRunDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	fn1 := writeFixture(t, dir, "ok.eit", validRecord)
	fn2 := writeFixture(t, dir, "bad.eit", failingRecord)

	buf := &bytes.Buffer{}
	rc := run(buf, []string{fn1, fn2}, false)
	assert.Equal(t, 1, rc)

	// The failed record still produced a complete document and the array
	// was closed
	var docs []map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	assert.Len(t, docs, 2)
	assert.Equal(t, fn2, docs[1]["filename"])
	assert.Equal(t, map[string]interface{}{"dummy": "nix"}, docs[1]["empty_structure"])
}
