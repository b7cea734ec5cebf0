package eit

import (
	"fmt"

	"github.com/asticode/go-astikit"
)

type DescriptorTag uint8

// Descriptor tags
// Chapter: 6.1 | Link: https://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.15.01_60/en_300468v011501p.pdf
const (
	DescriptorTagComponent     DescriptorTag = 0x50
	DescriptorTagExtendedEvent DescriptorTag = 0x4e
	DescriptorTagShortEvent    DescriptorTag = 0x4d
)

type DescriptorParser func(i *astikit.BytesIterator, h DescriptorHeader, offsetEnd int) (d Descriptor, err error)

// descriptorParserLUT is the closed set of supported tags. A nil entry is the
// unknown tag path which terminates the record decoding loop.
var descriptorParserLUT = [256]DescriptorParser{
	DescriptorTagComponent:     newDescriptorComponent,
	DescriptorTagExtendedEvent: newDescriptorExtendedEvent,
	DescriptorTagShortEvent:    newDescriptorShortEvent,
}

type Descriptor interface {
	length() uint8
	write(w *astikit.BitsWriter) (int, error)
}

type DescriptorHeader struct {
	Tag    DescriptorTag // the tag defines the structure of the contained data following the descriptor length.
	Length uint8
}

func (dh DescriptorHeader) parseDescriptor(i *astikit.BytesIterator, offsetEnd int) (d Descriptor, err error) {
	p := descriptorParserLUT[dh.Tag]
	if p == nil {
		err = fmt.Errorf("eit: parsing descriptor %#x failed: %w", uint8(dh.Tag), ErrUnknownDescriptorTag)
		return
	}
	return p(i, dh, offsetEnd)
}

// DescriptorShortEvent represents a short event descriptor
// Chapter: 6.2.37 | Link: https://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.15.01_60/en_300468v011501p.pdf
type DescriptorShortEvent struct {
	Header    DescriptorHeader
	EventName []byte
	Language  [3]byte
	Text      []byte
}

func newDescriptorShortEvent(i *astikit.BytesIterator, h DescriptorHeader, _ int) (dd Descriptor, err error) {
	// Create descriptor
	d := &DescriptorShortEvent{
		Header: h,
	}
	dd = d

	// Language
	var bs []byte
	if bs, err = i.NextBytesNoCopy(3); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	copy(d.Language[:], bs)

	// Get next byte
	var b byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Event name length
	eventLength := int(b)

	// Event name
	if d.EventName, err = i.NextBytes(eventLength); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	// Get next byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Text length
	textLength := int(b)

	// Text
	if d.Text, err = i.NextBytes(textLength); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}
	return
}

func (d *DescriptorShortEvent) length() uint8 {
	ret := 3 + 1 + 1 // language code and lengths
	ret += len(d.EventName)
	ret += len(d.Text)
	return uint8(ret)
}

func (d *DescriptorShortEvent) write(w *astikit.BitsWriter) (int, error) {
	b := astikit.NewBitsWriterBatch(w)

	length := d.length()
	b.Write(uint8(d.Header.Tag))
	b.Write(length)

	if err := b.Err(); err != nil {
		return 0, err
	}
	written := int(length) + 2

	b.Write(d.Language[:])
	b.Write(uint8(len(d.EventName)))
	b.Write(d.EventName)
	b.Write(uint8(len(d.Text)))
	b.Write(d.Text)

	return written, b.Err()
}

// DescriptorExtendedEvent represents one fragment of an extended event
// descriptor. A synopsis longer than one descriptor payload is split over up
// to 16 fragments sharing one language; Number orders them and the fragment
// whose Number equals LastDescriptorNumber closes the logical text.
// Chapter: 6.2.15 | Link: https://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.15.01_60/en_300468v011501p.pdf
type DescriptorExtendedEvent struct {
	Text                 []byte
	Header               DescriptorHeader
	Language             [3]byte
	LastDescriptorNumber uint8
	Number               uint8
}

func newDescriptorExtendedEvent(i *astikit.BytesIterator, h DescriptorHeader, _ int) (dd Descriptor, err error) {
	// Init
	d := &DescriptorExtendedEvent{
		Header: h,
	}
	dd = d

	// Get next byte
	var b byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Number
	d.Number = b >> 4

	// Last descriptor number
	d.LastDescriptorNumber = b & 0xf

	// Language code bytes are part of the fixed layout on every fragment even
	// though only fragment 0 carries a meaningful value
	var bs []byte
	if bs, err = i.NextBytesNoCopy(3); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	copy(d.Language[:], bs)

	// Get next byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Items length. The itemized sub-list (Table 53) never occurs in the
	// sidecar files this package targets and is not decoded.
	if b > 0 {
		err = fmt.Errorf("eit: parsing extended event descriptor failed: %w", ErrUnsupportedFeature)
		return
	}

	// Get next byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Text length
	textLength := int(b)

	// Text
	if d.Text, err = i.NextBytes(textLength); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}
	return
}

func (d *DescriptorExtendedEvent) length() uint8 {
	ret := 1 + 3 + 1 // numbers, language and items length
	ret += 1         // text length
	ret += len(d.Text)
	return uint8(ret)
}

func (d *DescriptorExtendedEvent) write(w *astikit.BitsWriter) (int, error) {
	b := astikit.NewBitsWriterBatch(w)

	length := d.length()
	b.Write(uint8(d.Header.Tag))
	b.Write(length)

	if err := b.Err(); err != nil {
		return 0, err
	}
	written := int(length) + 2

	b.WriteN(d.Number, 4)
	b.WriteN(d.LastDescriptorNumber, 4)

	b.Write(d.Language[:])

	b.Write(uint8(0)) // items length

	b.Write(uint8(len(d.Text)))
	b.Write(d.Text)

	return written, b.Err()
}

// DescriptorComponent represents a component descriptor. Only the fixed 6
// byte prefix is decoded; the trailing text is skipped, not transcoded.
// Chapter: 6.2.8 | Link: https://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.15.01_60/en_300468v011501p.pdf
type DescriptorComponent struct {
	Header           DescriptorHeader
	Language         [3]byte
	ComponentTag     uint8
	ComponentType    uint8
	StreamContent    uint8
	StreamContentExt uint8
}

func newDescriptorComponent(i *astikit.BytesIterator, h DescriptorHeader, offsetEnd int) (dd Descriptor, err error) {
	// Init
	d := &DescriptorComponent{
		Header: h,
	}
	dd = d

	// A declared length below the fixed prefix would make the text length
	// negative; refuse it instead of reading out of the descriptor
	if h.Length < 6 {
		err = fmt.Errorf("eit: component descriptor length %d below fixed prefix: %w", h.Length, ErrTruncated)
		return
	}

	// Get next byte
	var b byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Stream content ext
	d.StreamContentExt = b >> 4

	// Stream content
	d.StreamContent = b & 0xf

	// Get next byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Component type
	d.ComponentType = b

	// Get next byte
	if b, err = i.NextByte(); err != nil {
		err = fmt.Errorf("eit: fetching next byte failed: %w", ErrTruncated)
		return
	}

	// Component tag
	d.ComponentTag = b

	// Language
	var bs []byte
	if bs, err = i.NextBytesNoCopy(3); err != nil {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}
	copy(d.Language[:], bs)

	// Skip the text
	if i.Offset() < offsetEnd {
		if _, err = i.NextBytesNoCopy(offsetEnd - i.Offset()); err != nil {
			err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
			return
		}
	}
	return
}

func (d *DescriptorComponent) length() uint8 {
	return d.Header.Length
}

func (d *DescriptorComponent) write(w *astikit.BitsWriter) (int, error) {
	b := astikit.NewBitsWriterBatch(w)

	length := d.length()
	if length < 6 {
		length = 6
	}
	b.Write(uint8(d.Header.Tag))
	b.Write(length)

	if err := b.Err(); err != nil {
		return 0, err
	}
	written := int(length) + 2

	b.WriteN(d.StreamContentExt, 4)
	b.WriteN(d.StreamContent, 4)

	b.Write(d.ComponentType)
	b.Write(d.ComponentTag)

	b.Write(d.Language[:])

	for n := length - 6; n > 0; n-- {
		b.Write(uint8(0))
	}

	return written, b.Err()
}
