package eit

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// defaultCharset is table 00, the Latin alphabet used when a text field
// starts without a selector byte
// Page: 130 | Annex A.2 | Link: https://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.15.01_60/en_300468v011501p.pdf
var defaultCharset encoding.Encoding = charmap.ISO8859_1

// charsetLUT maps a single leading selector byte to a character table
// Table: A.3. Selector values absent from the table fall back to the default
// Latin table since broadcast data legitimately uses reserved codes.
// ISO/IEC 8859-11 has no dedicated x/text table; Windows-874 is byte
// compatible. GB-2312 is decoded through GB18030, its superset.
var charsetLUT = map[byte]encoding.Encoding{
	0x01: charmap.ISO8859_5,
	0x02: charmap.ISO8859_6,
	0x03: charmap.ISO8859_7,
	0x04: charmap.ISO8859_8,
	0x05: charmap.ISO8859_9,
	0x06: charmap.ISO8859_10,
	0x07: charmap.Windows874,
	0x09: charmap.ISO8859_13,
	0x0a: charmap.ISO8859_14,
	0x0b: charmap.ISO8859_15,
	0x11: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	0x13: simplifiedchinese.GB18030,
	0x15: unicode.UTF8,
}

// charsetDynamicLUT maps the third selector byte of a dynamically selected
// part of ISO/IEC 8859 (leading bytes 0x10 0x00) to a character table
// Table: A.4
var charsetDynamicLUT = map[byte]encoding.Encoding{
	0x01: charmap.ISO8859_1,
	0x02: charmap.ISO8859_2,
	0x03: charmap.ISO8859_3,
	0x04: charmap.ISO8859_4,
	0x05: charmap.ISO8859_5,
	0x06: charmap.ISO8859_6,
	0x07: charmap.ISO8859_7,
	0x08: charmap.ISO8859_8,
	0x09: charmap.ISO8859_9,
	0x0a: charmap.ISO8859_10,
	0x0b: charmap.Windows874,
	0x0d: charmap.ISO8859_13,
	0x0e: charmap.ISO8859_14,
	0x0f: charmap.ISO8859_15,
}

// resolveCharset inspects the leading control bytes of a text field and
// returns the character table the remaining bytes are coded in together with
// the number of control bytes consumed (0, 1 or 3).
func resolveCharset(bs []byte) (e encoding.Encoding, n int, err error) {
	e = defaultCharset
	if len(bs) == 0 || bs[0] >= 0x20 {
		return
	}

	if bs[0] == 0x10 {
		// Dynamically selected part of ISO/IEC 8859
		if len(bs) < 3 {
			err = fmt.Errorf("eit: dynamic character table selector needs 3 bytes, got %d: %w", len(bs), ErrTruncated)
			return
		}
		if bs[1] != 0x00 {
			err = fmt.Errorf("eit: dynamic character table selector second byte %#x: %w", bs[1], ErrInvalidEncodingSelector)
			return
		}
		n = 3
		if dyn, ok := charsetDynamicLUT[bs[2]]; ok {
			e = dyn
		}
		return
	}

	n = 1
	if c, ok := charsetLUT[bs[0]]; ok {
		e = c
	}
	return
}
