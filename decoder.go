package eit

import (
	"fmt"
	"io"
	"strings"

	"github.com/asticode/go-astikit"
)

// MaxRecordSize is the largest buffer DecodeRecord is meant for. Sidecar
// files top out around 1.1 KB; anything bigger is most likely not an EIT
// record at all.
const MaxRecordSize = 2000

// extendedEventState accumulates the fragments of one logical extended event
// until the closing fragment arrives
type extendedEventState struct {
	text     strings.Builder
	language [3]byte
}

// DecodeRecord decodes one EIT record from b and writes its JSON document to
// w. filename is embedded in the document as supplied, not parsed. The
// document is always syntactically complete, even when an error is returned:
// whatever decoded before the failure point is preserved, followed by the
// closing placeholder entity.
func DecodeRecord(w io.Writer, filename string, b []byte) (err error) {
	e := newRecordEmitter(w, filename)
	defer func() {
		if ferr := e.finalize(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	i := astikit.NewBytesIterator(b)

	// Header
	var h RecordHeader
	if h, err = parseRecordHeader(i); err != nil {
		return
	}
	e.header(h)

	// The descriptor region ends at the declared length or the buffer end,
	// whichever comes first
	offsetEnd := i.Offset() + int(h.DescriptorsLength)
	if offsetEnd > i.Len() {
		offsetEnd = i.Len()
	}

	// The extended event chain keeps its own transcoder: its carryover and
	// resolved table must survive any descriptor arriving between fragments
	td := newTextDecoder()
	extTd := newTextDecoder()
	var ext extendedEventState
	var shortEventCount int

	for i.Offset() < offsetEnd {
		// Tag and length
		var bs []byte
		if bs, err = i.NextBytesNoCopy(2); err != nil || len(bs) < 2 {
			err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
			return
		}

		dh := DescriptorHeader{
			Tag:    DescriptorTag(bs[0]),
			Length: bs[1],
		}

		if descriptorParserLUT[dh.Tag] == nil {
			// An unknown tag right at the end of the buffer is a regular end
			// of record; with bytes still remaining it aborts the decode
			if !i.HasBytesLeft() {
				return
			}
			err = fmt.Errorf("eit: descriptor tag %#x with %d bytes left: %w", uint8(dh.Tag), i.Len()-i.Offset(), ErrUnknownDescriptorTag)
			return
		}

		offsetDescriptorEnd := i.Offset() + int(dh.Length)
		if offsetDescriptorEnd > i.Len() {
			err = fmt.Errorf("eit: descriptor %#x length %d exceeds record: %w", uint8(dh.Tag), dh.Length, ErrTruncated)
			return
		}

		var d Descriptor
		if d, err = dh.parseDescriptor(i, offsetDescriptorEnd); err != nil {
			return
		}

		switch d := d.(type) {
		case *DescriptorShortEvent:
			var eventName, text string
			if eventName, err = td.decode(d.EventName, false); err != nil {
				return
			}
			if text, err = td.decode(d.Text, false); err != nil {
				return
			}
			shortEventCount++
			e.shortEvent(shortEventCount, d.Language, eventName, text)
		case *DescriptorExtendedEvent:
			if d.Number == 0 {
				ext.language = d.Language
				ext.text.Reset()
			}
			var s string
			if s, err = extTd.decode(d.Text, d.Number > 0); err != nil {
				return
			}
			ext.text.WriteString(s)
			if d.Number == d.LastDescriptorNumber {
				e.extendedEvent(ext.language, ext.text.String())
				ext.text.Reset()
			}
		case *DescriptorComponent:
			// Recorded for the record walk; its text is not surfaced
		}

		// One descriptor advances the cursor by exactly 2 + length no matter
		// how much its parser consumed
		i.Seek(offsetDescriptorEnd)
	}
	return
}
