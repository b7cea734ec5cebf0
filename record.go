// Package eit decodes single DVB Event Information Table (EIT) records, the
// binary sidecar format some receivers store next to their recordings, into
// JSON documents carrying the program title, synopsis and schedule data.
package eit

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/asticode/go-astikit"
)

// Errors
var (
	ErrTruncated               = errors.New("eit: record truncated")
	ErrInvalidEncodingSelector = errors.New("eit: invalid character table selector")
	ErrInvalidSequence         = errors.New("eit: invalid byte sequence")
	ErrOutputOverflow          = errors.New("eit: transcoded text overflows output buffer")
	ErrUnsupportedFeature      = errors.New("eit: extended event items are not supported")
	ErrUnknownDescriptorTag    = errors.New("eit: unknown descriptor tag")
)

// Running statuses
// Page: 37 | Chapter: 5.2.4 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	RunningStatusUndefined        = 0
	RunningStatusNotRunning       = 1
	RunningStatusStartsInAFewSecs = 2
	RunningStatusPausing          = 3
	RunningStatusRunning          = 4
	RunningStatusServiceOffAir    = 5
	RunningStatusReservedVariant1 = 6
	RunningStatusReservedVariant2 = 7
)

// RecordHeader represents the fixed layout header of an EIT record
// Page: 36 | Chapter: 5.2.4 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type RecordHeader struct {
	EventID           uint16
	StartTime         StartTime
	Duration          BCDTime
	RunningStatus     uint8
	HasFreeCAMode     bool // When true indicates that access to one or more streams may be controlled by a CA system.
	DescriptorsLength uint16
}

// parseRecordHeader parses a record header
func parseRecordHeader(i *astikit.BytesIterator) (h RecordHeader, err error) {
	// Get next 2 bytes
	var bs []byte
	if bs, err = i.NextBytesNoCopy(2); err != nil || len(bs) < 2 {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	// Event ID
	h.EventID = binary.BigEndian.Uint16(bs)

	// Start time
	if h.StartTime, err = parseStartTime(i); err != nil {
		err = fmt.Errorf("eit: parsing start time failed: %w", err)
		return
	}

	// Duration
	if h.Duration, err = parseBCDTime(i); err != nil {
		err = fmt.Errorf("eit: parsing duration failed: %w", err)
		return
	}

	// Get next 2 bytes
	if bs, err = i.NextBytesNoCopy(2); err != nil || len(bs) < 2 {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	// Running status
	h.RunningStatus = bs[0] >> 5

	// Free CA mode
	h.HasFreeCAMode = bs[0]&0x10 > 0

	// Descriptors loop length
	h.DescriptorsLength = uint16(bs[0]&0xf)<<8 | uint16(bs[1])
	return
}

func writeRecordHeader(w *astikit.BitsWriter, h RecordHeader) (int, error) {
	b := astikit.NewBitsWriterBatch(w)

	b.Write(h.EventID)
	if err := b.Err(); err != nil {
		return 0, err
	}
	written := 2

	n, err := writeStartTime(w, h.StartTime)
	written += n
	if err != nil {
		return written, err
	}

	n, err = writeBCDTime(w, h.Duration)
	written += n
	if err != nil {
		return written, err
	}

	b.WriteN(h.RunningStatus, 3)
	b.Write(h.HasFreeCAMode)
	b.WriteN(h.DescriptorsLength, 12)

	return written + 2, b.Err()
}
