//go:build linux || darwin

package freshen

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// xattrFreshener backs Freshener with real extended attributes via
// golang.org/x/sys/unix, the primitive the ecosystem's dedicated xattr
// packages wrap. There is no call in spec §4.10 for anything beyond
// get/set/list, so the syscall package is used directly rather than adding
// a wrapper dependency.
type xattrFreshener struct{}

// New returns the platform's real Freshener.
func New() Freshener {
	return xattrFreshener{}
}

func (xattrFreshener) Touch(path string) error {
	if err := unix.Setxattr(path, attrLastUsed, encodeLastUsed(time.Now()), 0); err != nil {
		return fmt.Errorf("freshen: set %s on %s: %w", attrLastUsed, path, err)
	}
	return nil
}

func (f xattrFreshener) AddWatch(path, fingerprint string) error {
	existing, err := f.Watches(path)
	if err != nil {
		return err
	}
	updated := addUnique(existing, fingerprint)
	if err := unix.Setxattr(path, attrWatches, encodeWatches(updated), 0); err != nil {
		return fmt.Errorf("freshen: set %s on %s: %w", attrWatches, path, err)
	}
	return nil
}

func (xattrFreshener) LastUsed(path string) (time.Time, error) {
	buf := make([]byte, 64)
	n, err := unix.Getxattr(path, attrLastUsed, buf)
	if err != nil {
		return time.Time{}, nil //nolint:nilerr // missing attribute is not an error to callers
	}
	t, err := decodeLastUsed(buf[:n])
	if err != nil {
		return time.Time{}, fmt.Errorf("freshen: decode %s on %s: %w", attrLastUsed, path, err)
	}
	return t, nil
}

func (xattrFreshener) Watches(path string) ([]string, error) {
	size, err := unix.Listxattr(path, nil)
	if err != nil || size == 0 {
		return nil, nil
	}
	buf := make([]byte, 4096)
	n, err := unix.Getxattr(path, attrWatches, buf)
	if err != nil {
		return nil, nil
	}
	return decodeWatches(buf[:n]), nil
}
