// Package fsresolve implements component J: turning a request URL into a
// local filesystem path beneath the configured music directory, clamping
// any attempt to climb above it back down to the root.
package fsresolve

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"podrelay/internal/apperr"
)

// Resolver maps request paths to local files under a fixed root.
type Resolver struct {
	musicDir string // canonical, absolute, no trailing slash
}

// New builds a Resolver rooted at dir, tilde-expanding and canonicalizing it.
func New(dir string) (*Resolver, error) {
	expanded, err := expandTilde(dir)
	if err != nil {
		return nil, fmt.Errorf("fsresolve: expand music dir %q: %w", dir, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("fsresolve: resolve music dir %q: %w", dir, err)
	}
	return &Resolver{musicDir: filepath.Clean(abs)}, nil
}

func expandTilde(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
}

// MusicDir returns the canonical music directory root.
func (r *Resolver) MusicDir() string {
	return r.musicDir
}

// GetLocalPath implements spec §4.8's getLocalPath(url): strips an optional
// http://host prefix and query string, percent-decodes the remainder,
// clamps any ".." segments so the result can never climb above the music
// directory, then prepends the music directory. A traversal attempt doesn't
// escape and get forbidden — it reduces to the root (e.g. "/../etc/passwd"
// becomes "<musicDir>/etc/passwd"), which then 404s like any other absent
// file. withinRoot is kept in the signature for callers that short-circuit
// on a genuine resolution failure; clamping means it's always true here.
func (r *Resolver) GetLocalPath(rawURL string) (path string, withinRoot bool, err error) {
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
		return "", false, apperr.ClientRequest(fmt.Sprintf("bad URL: %v", err))
	}

	clamped := filepath.Clean(filepath.Join(string(filepath.Separator), decoded))
	canonical := filepath.Join(r.musicDir, clamped)

	return canonical, true, nil
}
