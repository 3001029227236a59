package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeForPathKnownExtension(t *testing.T) {
	assert.Equal(t, "text/html; charset=UTF-8", ContentTypeForPath("/www/index.html"))
	assert.Equal(t, "image/png", ContentTypeForPath("/www/img/logo.png"))
}

func TestContentTypeForPathIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForPath("/www/PHOTO.JPG"))
}

func TestContentTypeForPathUnknownExtension(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentTypeForPath("/www/thing.xyz"))
}

func TestContentTypeForPathNoExtension(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentTypeForPath("/www/README"))
}

func TestContentTypeForPathTrailingDot(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentTypeForPath("/www/weird."))
}
