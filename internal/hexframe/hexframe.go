// Package hexframe converts captured serial chunks to and from the hex text
// stored on disk, including the fixed-offset trim applied to capture records.
//
// The literals and offsets below belong to an undocumented device framing and
// are treated as opaque constants.
package hexframe

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// RawPrefix is prepended to every captured chunk before it is logged.
	RawPrefix = "7e39700010"
	// UnwantedPrefix is dropped from the front of a trimmed record.
	UnwantedPrefix = "100070f50f"
	// HeaderWidth is the number of leading characters dropped by Trim.
	HeaderWidth = 18
	// TrailerWidth is the number of trailing characters dropped by Trim.
	TrailerWidth = 4
	// MinTrimLength is the length a raw entry must exceed to be trimmed.
	MinTrimLength = HeaderWidth + TrailerWidth
)

var (
	// ErrOddLength is returned when hex text has an odd number of digits.
	ErrOddLength = errors.New("odd length hex string")
	// ErrInvalidByte is returned when hex text contains a non-hex character.
	ErrInvalidByte = errors.New("non-hexadecimal character")
)

// Encode returns the lowercase hex form of b.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// Decode parses hex text (either case) into bytes. Errors wrap ErrOddLength
// or ErrInvalidByte.
func Decode(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err == nil {
		return b, nil
	}

	var invalid hex.InvalidByteError
	switch {
	case errors.As(err, &invalid):
		return nil, fmt.Errorf("%w %#02x at offset %d", ErrInvalidByte, byte(invalid), strings.IndexByte(s, byte(invalid)))
	case errors.Is(err, hex.ErrLength):
		return nil, fmt.Errorf("%w: %d characters", ErrOddLength, len(s))
	default:
		return nil, err
	}
}

// RawEntry returns RawPrefix followed by the hex form of chunk. This is the
// line appended to the EC file.
func RawEntry(chunk []byte) string {
	return RawPrefix + Encode(chunk)
}

// Trim drops HeaderWidth leading and TrailerWidth trailing characters from a
// raw entry, then UnwantedPrefix if the remainder starts with it. It reports
// false and returns "" when raw is not longer than MinTrimLength.
func Trim(raw string) (string, bool) {
	if len(raw) <= MinTrimLength {
		return "", false
	}
	trimmed := raw[HeaderWidth : len(raw)-TrailerWidth]
	return strings.TrimPrefix(trimmed, UnwantedPrefix), true
}

// Record is the pair of entries produced from one captured chunk.
type Record struct {
	// Raw is the untrimmed entry written to the EC file.
	Raw string
	// Cut is Raw without its header and trailer, before UnwantedPrefix is
	// removed.
	Cut string
	// Trimmed is the entry written to the main output file when HasTrimmed.
	Trimmed    string
	HasTrimmed bool
}

// NewRecord builds the Record for a captured chunk.
func NewRecord(chunk []byte) Record {
	raw := RawEntry(chunk)
	trimmed, ok := Trim(raw)
	rec := Record{Raw: raw, Trimmed: trimmed, HasTrimmed: ok}
	if ok {
		rec.Cut = raw[HeaderWidth : len(raw)-TrailerWidth]
	}
	return rec
}

// Stripped reports whether UnwantedPrefix was removed from the cut entry.
func (r Record) Stripped() bool {
	return r.HasTrimmed && r.Cut != r.Trimmed
}
