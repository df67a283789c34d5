package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	v, err := validateName("  Ann Chovey  ")
	require.NoError(t, err)
	assert.Equal(t, "Ann Chovey", v)

	_, err = validateName("")
	assert.Error(t, err)

	_, err = validateName(strings.Repeat("a", 51))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestValidateTitleAndDescription(t *testing.T) {
	_, err := validateTitle(strings.Repeat("x", 101))
	assert.Error(t, err)
	_, err = validateTitle(strings.Repeat("x", 100))
	assert.NoError(t, err)

	_, err = validateDescription(strings.Repeat("x", 301))
	assert.Error(t, err)
	_, err = validateDescription("builds things")
	assert.NoError(t, err)
}

func TestValidateGithub(t *testing.T) {
	v, err := validateGithub("@octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", v, "leading @ is stripped")

	_, err = validateGithub("not a username")
	assert.Error(t, err)

	_, err = validateGithub(strings.Repeat("a", 40))
	assert.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	v, err := validateWebsite("example.com/me")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/me", v, "bare host is coerced to https")

	v, err = validateWebsite("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", v, "explicit scheme is kept")

	_, err = validateWebsite("")
	assert.Error(t, err)
}

func TestValidateLinkedin(t *testing.T) {
	v, err := validateLinkedin("linkedin.com/in/ann")
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/ann", v)

	_, err = validateLinkedin("https://example.com/in/ann")
	assert.Error(t, err, "host must contain linkedin.com")
}

func TestValidateWorldID(t *testing.T) {
	_, err := validateWorldID(strings.Repeat("a", 255))
	assert.NoError(t, err)
	_, err = validateWorldID(strings.Repeat("a", 256))
	assert.Error(t, err)
}
