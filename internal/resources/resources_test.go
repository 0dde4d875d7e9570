package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerRendersVersionAndDerivesLastModified(t *testing.T) {
	body, lastModified, err := Banner("1.2.3")
	require.NoError(t, err)
	assert.Contains(t, string(body), "1.2.3")

	again, lm2, err := Banner("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, body, again)
	assert.Equal(t, lastModified, lm2)

	_, lm3, err := Banner("2.0.0")
	require.NoError(t, err)
	assert.NotEqual(t, lastModified, lm3)
}

func TestFaviconBytesNonEmpty(t *testing.T) {
	data, lastModified, err := Favicon()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.False(t, lastModified.IsZero())
}

func TestErrorHTMLRendersFields(t *testing.T) {
	body, err := ErrorHTML(404, "Not Found", "no such user")
	require.NoError(t, err)
	assert.Contains(t, string(body), "404")
	assert.Contains(t, string(body), "Not Found")
	assert.Contains(t, string(body), "no such user")
}

func TestSplitVersion(t *testing.T) {
	major, minor, patch := splitVersion("1.2.3")
	assert.Equal(t, 1, major)
	assert.Equal(t, 2, minor)
	assert.Equal(t, 3, patch)
}
