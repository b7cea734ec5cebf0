package eit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/asticode/go-astikit"
	"github.com/stretchr/testify/assert"
)

func TestParseBCDTime(t *testing.T) {
	// EXAMPLE 3 of chapter 5.2.4: 01:45:30 is coded as "0x014530"
	i := astikit.NewBytesIterator([]byte{0x01, 0x45, 0x30})
	d, err := parseBCDTime(i)
	assert.NoError(t, err)
	assert.Equal(t, BCDTime{Hour: 1, Minute: 45, Second: 30}, d)
	assert.Equal(t, "01:45:30", d.String())

	// Out-of-range BCD digits pass through uninterpreted
	i = astikit.NewBytesIterator([]byte{0x99, 0x00, 0x00})
	d, err = parseBCDTime(i)
	assert.NoError(t, err)
	assert.Equal(t, uint8(99), d.Hour)

	i = astikit.NewBytesIterator([]byte{0x01, 0x45})
	_, err = parseBCDTime(i)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestParseStartTime(t *testing.T) {
	// EXAMPLE 1 of chapter 5.2.4: 93/10/13 12:45:00 is coded as "0xC079124500"
	i := astikit.NewBytesIterator([]byte{0xc0, 0x79, 0x12, 0x45, 0x00})
	st, err := parseStartTime(i)
	assert.NoError(t, err)
	assert.Equal(t, StartTime{
		Year:  1993,
		Month: 10,
		Day:   13,
		Clock: BCDTime{Hour: 12, Minute: 45},
	}, st)
	assert.Equal(t, "1993/10/13 12:45:00", st.String())

	i = astikit.NewBytesIterator([]byte{0xc0, 0x79, 0x12})
	_, err = parseStartTime(i)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestWriteStartTime(t *testing.T) {
	st := StartTime{
		Year:  1993,
		Month: 10,
		Day:   13,
		Clock: BCDTime{Hour: 12, Minute: 45},
	}

	buf := &bytes.Buffer{}
	w := astikit.NewBitsWriter(astikit.BitsWriterOptions{Writer: buf})
	n, err := writeStartTime(w, st)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte{0xc0, 0x79, 0x12, 0x45, 0x00}, buf.Bytes())

	// And back
	parsed, err := parseStartTime(astikit.NewBytesIterator(buf.Bytes()))
	assert.NoError(t, err)
	assert.Equal(t, st, parsed)
}

func TestWriteBCDTime(t *testing.T) {
	buf := &bytes.Buffer{}
	w := astikit.NewBitsWriter(astikit.BitsWriterOptions{Writer: buf})
	n, err := writeBCDTime(w, BCDTime{Hour: 1, Minute: 45, Second: 30})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x45, 0x30}, buf.Bytes())
}
