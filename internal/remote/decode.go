package remote

import (
	"encoding/base64"
	"fmt"
)

// enclosureKey is the fixed printable-ASCII XOR key the remote's
// streamInfo.url field is obfuscated with (spec §4.4: "a fixed
// printable-ASCII key repeated cyclically"). It is intentionally not
// configurable — the remote doesn't let the obfuscation vary.
const enclosureKey = "pR3l@yXk9mQwZt2s"

// decodeEnclosureURL reverses the remote's streamInfo.url obfuscation:
// base64-decode, then XOR against enclosureKey repeated to length.
func decodeEnclosureURL(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("remote: base64-decode enclosure url: %w", err)
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = b ^ enclosureKey[i%len(enclosureKey)]
	}
	return string(out), nil
}
