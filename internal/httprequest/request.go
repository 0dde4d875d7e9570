// Package httprequest implements component A: parsing a raw HTTP/1.x
// request line and headers off the wire, and translating a Range header
// against a concrete file size. It never touches a socket directly — callers
// hand it a bufio.Reader positioned at the start of a request.
package httprequest

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"podrelay/internal/apperr"
)

// Request is the immutable parsed form of one HTTP request. Headers
// preserves insertion order and is case-sensitive on the wire name, but
// Header() below does a case-insensitive lookup as HTTP requires.
type Request struct {
	Method      string
	RawURL      string
	Version     string
	Path        string // decoded, query-stripped path
	HeaderNames []string
	HeaderVals  map[string]string // keyed by canonical lowercase name
}

// knownPodcastAgentPrefixes lists User-Agent prefixes of clients known to
// abandon connections mid-stream in ways that shouldn't be logged as errors
// (spec §4.3 step 7).
var knownPodcastAgentPrefixes = []string{
	"iTunes/", "Overcast/", "Podcast Addict", "AntennaPod/", "Downcast/", "Castro/",
}

// Parse reads one request (request line + headers, no body) from r.
func Parse(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, apperr.ClientRequest(fmt.Sprintf("failed to read request line: %v", err))
	}
	method, rawURL, version, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	names, vals, err := parseHeaders(r)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:      method,
		RawURL:      rawURL,
		Version:     version,
		HeaderNames: names,
		HeaderVals:  vals,
	}

	if req.Host() == "" {
		return nil, apperr.ClientRequest("missing Host header")
	}

	path, err := derivePath(rawURL)
	if err != nil {
		return nil, apperr.ClientRequest(fmt.Sprintf("bad URL: %v", err))
	}
	if path == "" {
		return nil, apperr.ClientRequest("empty URL")
	}
	req.Path = path

	return req, nil
}

func parseRequestLine(line string) (method, rawURL, version string, err error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return "", "", "", apperr.ClientRequest(fmt.Sprintf("malformed request line %q", line))
	}
	method, rawURL, version = parts[0], parts[1], parts[2]

	if method != "GET" && method != "HEAD" {
		return "", "", "", apperr.ClientRequestStatus(405, fmt.Sprintf("method %q not allowed", method))
	}
	if !strings.HasPrefix(version, "HTTP/1.") {
		return "", "", "", apperr.ClientRequestStatus(505, fmt.Sprintf("unsupported HTTP version %q", version))
	}
	if rawURL == "" {
		return "", "", "", apperr.ClientRequest("empty URL")
	}
	return method, rawURL, version, nil
}

// parseHeaders reads header lines up to and including the blank terminator
// line, folding RFC 2616 continuation lines (leading whitespace) onto the
// previous header's value. Unparsable lines are skipped, not fatal.
func parseHeaders(r *bufio.Reader) ([]string, map[string]string, error) {
	names := []string{}
	vals := map[string]string{}
	var lastCanon string

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, nil, apperr.ClientRequest(fmt.Sprintf("failed to read headers: %v", err))
		}
		if line == "" {
			return names, vals, nil
		}

		if (line[0] == ' ' || line[0] == '\t') && lastCanon != "" {
			vals[lastCanon] = vals[lastCanon] + " " + strings.TrimSpace(line)
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue // unparsable, skipped silently, not fatal
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if name == "" {
			continue
		}
		canon := strings.ToLower(name)
		if _, exists := vals[canon]; !exists {
			names = append(names, name)
		}
		vals[canon] = value
		lastCanon = canon
	}
}

// readLine reads one CRLF- or LF-terminated line, trimming the terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	return line, nil
}

// derivePath strips an optional http://host prefix and query string, then
// percent-decodes the remainder as UTF-8. Encoded slashes are decoded just
// like literal ones (spec §4.1): we never special-case %2F.
func derivePath(rawURL string) (string, error) {
	u := rawURL
	if strings.HasPrefix(u, "http://") {
		rest := u[len("http://"):]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			u = rest[idx:]
		} else {
			u = "/"
		}
	}
	if idx := strings.IndexByte(u, '?'); idx >= 0 {
		u = u[:idx]
	}
	decoded, err := url.PathUnescape(u)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

// Header does a case-insensitive lookup, returning "" if absent.
func (r *Request) Header(name string) string {
	return r.HeaderVals[strings.ToLower(name)]
}

func (r *Request) Host() string {
	return r.Header("Host")
}

func (r *Request) IsHead() bool {
	return r.Method == "HEAD"
}

// IsFromKnownPodcastAgent reports whether User-Agent matches a client known
// to abandon connections mid-stream in benign ways (spec §4.3 step 7).
func (r *Request) IsFromKnownPodcastAgent() bool {
	ua := r.Header("User-Agent")
	for _, prefix := range knownPodcastAgentPrefixes {
		if strings.HasPrefix(ua, prefix) {
			return true
		}
	}
	return false
}
