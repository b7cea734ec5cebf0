package eit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/asticode/go-astikit"
)

// BCDTime represents a 24 bit field coded as 6 digits in 4-bit Binary Coded
// Decimal (BCD), e.g. 01:45:30 is coded as "0x014530".
// Digits are kept as received: broadcast data may carry out-of-range values
// like 99 and they must survive into the output document unchanged.
type BCDTime struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// String formats the time the way the output document expects it
func (t BCDTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// StartTime represents the 40 bit start time field: 16 LSBs of the Modified
// Julian Date followed by a BCD time of day. The value is UTC as received.
// Page: 160 | Annex C | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type StartTime struct {
	Year  int // full Gregorian year
	Month int
	Day   int
	Clock BCDTime
}

// String formats the start time the way the output document expects it
func (t StartTime) String() string {
	return fmt.Sprintf("%d/%d/%d %s", t.Year, t.Month, t.Day, t.Clock)
}

// parseStartTime parses a DVB start time
// I apologize for the computation which is really messy but details are given in the documentation
func parseStartTime(i *astikit.BytesIterator) (t StartTime, err error) {
	// Get next 2 bytes
	var bs []byte
	if bs, err = i.NextBytesNoCopy(2); err != nil || len(bs) < 2 {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}

	// Date
	mjd := float64(binary.BigEndian.Uint16(bs))
	ytf := math.Floor((mjd - 15078.2) / 365.25)
	mtf := math.Floor((mjd - 14956.1 - math.Floor(ytf*365.25)) / 30.6001)
	mt := int(mtf)
	t.Day = int(mjd - 14956 - math.Floor(ytf*365.25) - math.Floor(mtf*30.6001))

	kb := mt>>1 == 7
	k := int(b2u(kb))
	t.Year = 1900 + int(ytf) + k
	t.Month = mt - 1 - k*12

	// Time of day
	if t.Clock, err = parseBCDTime(i); err != nil {
		err = fmt.Errorf("eit: parsing BCD time failed: %w", err)
		return
	}
	return
}

// parseBCDTime parses a 3 byte BCD hours/minutes/seconds field
func parseBCDTime(i *astikit.BytesIterator) (t BCDTime, err error) {
	var bs []byte
	if bs, err = i.NextBytesNoCopy(3); err != nil || len(bs) < 3 {
		err = fmt.Errorf("eit: fetching next bytes failed: %w", ErrTruncated)
		return
	}
	t.Hour = parseBCDByte(bs[0])
	t.Minute = parseBCDByte(bs[1])
	t.Second = parseBCDByte(bs[2])
	return
}

// parseBCDByte parses a byte holding two BCD digits
func parseBCDByte(i byte) uint8 {
	return i>>4*10 + i&0xf
}

func writeStartTime(w *astikit.BitsWriter, t StartTime) (int, error) {
	year := t.Year - 1900

	l := 0
	if t.Month <= 2 {
		l = 1
	}

	mjd := 14956 + t.Day + int(float64(year-l)*365.25) + int(float64(t.Month+1+l*12)*30.6001)

	b := astikit.NewBitsWriterBatch(w)

	b.Write(uint16(mjd))
	bytesWritten, err := writeBCDTime(w, t.Clock)
	if err != nil {
		return 2, err
	}

	return bytesWritten + 2, b.Err()
}

func writeBCDTime(w *astikit.BitsWriter, t BCDTime) (int, error) {
	b := astikit.NewBitsWriterBatch(w)

	b.Write(bcdByteRepresentation(t.Hour))
	b.Write(bcdByteRepresentation(t.Minute))
	b.Write(bcdByteRepresentation(t.Second))

	return 3, b.Err()
}

func bcdByteRepresentation(n uint8) uint8 {
	return (n/10)<<4 | n%10
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
