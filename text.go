package eit

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// scratchSize bounds the UTF-8 output of one transcoded fragment. Observed
// records never exceed ~1.1 KB in total so a fragment can't come close.
const scratchSize = 2048

// textDecoder converts text field byte spans to UTF-8 and owns the carryover
// state: a multi-byte sequence split at a descriptor boundary is held back
// and prepended to the next continuation fragment instead of being treated
// as an error. One decoder serves exactly one record decode so independent
// decodes can never interfere.
type textDecoder struct {
	t       transform.Transformer
	carry   []byte
	scratch [scratchSize]byte
}

func newTextDecoder() *textDecoder {
	return &textDecoder{}
}

// decode transcodes one text field fragment to UTF-8. The first call for a
// logical field resolves the character table from the fragment's leading
// control bytes and drops any pending carryover; a continuation call keeps
// the resolved table and prepends the tail carried over from the previous
// fragment.
// x/text decoders substitute U+FFFD for undecodable input instead of
// returning an error, so a U+FFFD legitimately encoded in the source is
// indistinguishable from a substitution and is likewise reported as an
// invalid sequence.
func (d *textDecoder) decode(src []byte, continuation bool) (s string, err error) {
	if !continuation {
		var e encoding.Encoding
		var n int
		if e, n, err = resolveCharset(src); err != nil {
			return
		}
		src = src[n:]
		d.t = e.NewDecoder()
		d.carry = d.carry[:0]
	} else {
		if d.t == nil {
			// Continuation without a resolved table, be tolerant
			d.t = defaultCharset.NewDecoder()
		}
		if len(d.carry) > 0 {
			src = append(append([]byte{}, d.carry...), src...)
			d.carry = d.carry[:0]
		}
	}

	// atEOF stays false: an incomplete trailing sequence is a fragment
	// boundary, not the end of the logical field
	nDst, nSrc, terr := d.t.Transform(d.scratch[:], src, false)
	switch terr {
	case nil:
	case transform.ErrShortSrc:
		// Sequence straddles the descriptor boundary, keep the tail for the
		// next fragment
		d.carry = append(d.carry[:0], src[nSrc:]...)
	case transform.ErrShortDst:
		err = fmt.Errorf("eit: transcoding %d bytes: %w", len(src), ErrOutputOverflow)
		return
	default:
		err = fmt.Errorf("eit: transcoding failed: %v: %w", terr, ErrInvalidSequence)
		return
	}

	// x/text decoders report undecodable input by emitting the replacement
	// rune rather than by returning an error
	out := d.scratch[:nDst]
	for i, r := range string(out) {
		if r == utf8.RuneError {
			err = fmt.Errorf("eit: invalid sequence at offset %d of decoded field: %w", i, ErrInvalidSequence)
			return
		}
	}

	s = string(out)
	return
}
