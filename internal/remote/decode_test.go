package remote

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xorEncode(plain string) string {
	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i++ {
		out[i] = plain[i] ^ enclosureKey[i%len(enclosureKey)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

func TestDecodeEnclosureURLRoundTrip(t *testing.T) {
	plain := "https://cdn.example.com/shard7/track-abc123.m4a?sig=xyz"
	encoded := xorEncode(plain)

	decoded, err := decodeEnclosureURL(encoded)
	require.NoError(t, err)
	assert.Equal(t, plain, decoded)
}

func TestDecodeEnclosureURLRejectsBadBase64(t *testing.T) {
	_, err := decodeEnclosureURL("not-valid-base64!!!")
	require.Error(t, err)
}
