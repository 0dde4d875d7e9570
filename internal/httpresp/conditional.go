package httpresp

import (
	"net/http"
	"time"
)

// NotModifiedSince implements spec §4.2's not-modified helper: it parses the
// If-Modified-Since header (RFC 1123) and compares it against lastModified at
// second granularity. A parse failure is treated as "header absent" — the
// caller logs it, this function just returns false.
func NotModifiedSince(ifModifiedSince string, lastModified time.Time) (notModified bool, parseErr error) {
	if ifModifiedSince == "" {
		return false, nil
	}
	clientTime, err := http.ParseTime(ifModifiedSince)
	if err != nil {
		return false, err
	}
	return !clientTime.UTC().Truncate(time.Second).Before(lastModified.UTC().Truncate(time.Second)), nil
}

// LastModifiedHeader formats t per RFC 1123 GMT for a Last-Modified header.
func LastModifiedHeader(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
