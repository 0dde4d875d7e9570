package httprequest

import (
	"strconv"
	"strings"

	"podrelay/internal/apperr"
)

// LogicalRange is a parsed but not-yet-translated range: at most one of
// Start/End may be -1, meaning "unspecified on this side" (spec §3).
type LogicalRange struct {
	Start int64 // -1 if unspecified (suffix range)
	End   int64 // -1 if unspecified (open-ended range)
}

// ByteRange is a translated, physical, inclusive 0-indexed range into a file
// of known size (spec §3): 0 <= Start <= End < size always holds for a value
// returned by Translate.
type ByteRange struct {
	Start int64
	End   int64
}

// ParseRange parses a Range header value per spec §4.1. A nil, nil return
// means "no range" (absent, or one of the documented not-really-a-range
// shapes that the reference server treats as absent). A non-nil error means
// the caller should fail the request (multi-range is a hard 500).
func ParseRange(header string) (*LogicalRange, error) {
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, "bytes=") {
		return nil, nil // other units: no range
	}
	spec := strings.TrimPrefix(header, "bytes=")

	if strings.Contains(spec, ",") {
		return nil, apperr.ClientRequestStatus(500, "multi-range requests are not supported")
	}

	dashIdx := strings.IndexByte(spec, '-')
	if dashIdx < 0 {
		return nil, nil // no '-' at all: no range
	}
	// Reject a second '-' anywhere else (e.g. "5-5-"): conservative, per
	// spec §9's note that such inputs are treated as invalid -> no range.
	if strings.IndexByte(spec[dashIdx+1:], '-') >= 0 {
		return nil, nil
	}

	startStr := spec[:dashIdx]
	endStr := spec[dashIdx+1:]

	if startStr == "" && endStr == "" {
		return nil, nil // bare "-"
	}

	if startStr == "" {
		// Suffix range: "-N"
		end, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return nil, nil
		}
		if end == 0 {
			return nil, nil // "-0" -> no range, per spec §4.1
		}
		return &LogicalRange{Start: -1, End: end}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}

	if endStr == "" {
		return &LogicalRange{Start: start, End: -1}, nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return nil, nil
	}
	if start > end {
		return nil, nil // per spec §4.1: treated as absent
	}
	return &LogicalRange{Start: start, End: end}, nil
}

// Translate maps a LogicalRange against a concrete file size per the table
// in spec §4.1. A nil, nil result means "ignore the Range header, serve the
// whole file" (e.g. size == 0). A non-nil error with Kind
// RangeNotSatisfiable means emit 416; any other error is a 500.
func Translate(lr *LogicalRange, size int64) (*ByteRange, error) {
	if lr == nil || size == 0 {
		return nil, nil
	}

	switch {
	case lr.Start >= 0 && lr.End < 0:
		// "start-" open-ended
		if lr.Start >= size {
			return nil, apperr.RangeNotSatisfiable("range start beyond end of file")
		}
		return &ByteRange{Start: lr.Start, End: size - 1}, nil

	case lr.Start >= 0 && lr.End >= 0:
		if lr.Start >= size {
			return nil, apperr.RangeNotSatisfiable("range start beyond end of file")
		}
		end := lr.End
		if end >= size {
			end = size - 1
		}
		return &ByteRange{Start: lr.Start, End: end}, nil

	case lr.Start < 0 && lr.End >= 0:
		// Suffix range: last End bytes.
		start := size - lr.End
		if start < 0 {
			start = 0
		}
		return &ByteRange{Start: start, End: size - 1}, nil

	default:
		// Both negative: invalid.
		return nil, apperr.LocalIO("invalid byte range", nil)
	}
}
