package eit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDecoderDefaultLatin(t *testing.T) {
	td := newTextDecoder()
	s, err := td.decode([]byte("The Big Bang Theory"), false)
	assert.NoError(t, err)
	assert.Equal(t, "The Big Bang Theory", s)

	// ISO-8859-1 high bytes
	s, err = td.decode([]byte{'c', 'a', 'f', 0xe9}, false)
	assert.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestTextDecoderSelector(t *testing.T) {
	td := newTextDecoder()

	// UTF-8 via selector 0x15
	s, err := td.decode(append([]byte{0x15}, "Schneewelt"...), false)
	assert.NoError(t, err)
	assert.Equal(t, "Schneewelt", s)

	// Dynamic selector to ISO-8859-1
	s, err = td.decode([]byte{0x10, 0x00, 0x01, 0xdf}, false)
	assert.NoError(t, err)
	assert.Equal(t, "ß", s)
}

func TestTextDecoderCarryover(t *testing.T) {
	td := newTextDecoder()

	// "Straße" in UTF-8 split in the middle of the two byte "ß"
	s, err := td.decode([]byte{0x15, 'S', 't', 'r', 'a', 0xc3}, false)
	assert.NoError(t, err)
	assert.Equal(t, "Stra", s)
	assert.NotEmpty(t, td.carry)

	s, err = td.decode([]byte{0x9f, 'e'}, true)
	assert.NoError(t, err)
	assert.Equal(t, "ße", s)
	assert.Empty(t, td.carry)

	// A fresh logical field drops pending carryover
	td.carry = append(td.carry[:0], 0xc3)
	s, err = td.decode([]byte("neu"), false)
	assert.NoError(t, err)
	assert.Equal(t, "neu", s)
}

func TestTextDecoderCarryoverUTF16(t *testing.T) {
	td := newTextDecoder()

	// "AB" in UTF-16BE split in the middle of the second code unit
	s, err := td.decode([]byte{0x11, 0x00, 0x41, 0x00}, false)
	assert.NoError(t, err)
	assert.Equal(t, "A", s)

	s, err = td.decode([]byte{0x42}, true)
	assert.NoError(t, err)
	assert.Equal(t, "B", s)
}

func TestTextDecoderInvalidSequence(t *testing.T) {
	td := newTextDecoder()

	// 0xff can never start a UTF-8 sequence
	_, err := td.decode([]byte{0x15, 'a', 0xff, 'b'}, false)
	assert.True(t, errors.Is(err, ErrInvalidSequence))
}

func TestTextDecoderOutputOverflow(t *testing.T) {
	td := newTextDecoder()

	// Each 0xe9 becomes the two byte UTF-8 "é", overflowing the scratch
	// buffer well before the input is consumed
	_, err := td.decode(bytes.Repeat([]byte{0xe9}, scratchSize), false)
	assert.True(t, errors.Is(err, ErrOutputOverflow))
}
