//go:build !linux && !darwin

package freshen

import "time"

// noopFreshener backs Freshener on platforms without extended-attribute
// support. Every call succeeds and does nothing, consistent with spec
// §4.10's "writes are best-effort and must never fail the calling
// operation".
type noopFreshener struct{}

func New() Freshener {
	return noopFreshener{}
}

func (noopFreshener) Touch(string) error                { return nil }
func (noopFreshener) AddWatch(string, string) error     { return nil }
func (noopFreshener) LastUsed(string) (time.Time, error) { return time.Time{}, nil }
func (noopFreshener) Watches(string) ([]string, error)  { return nil, nil }
