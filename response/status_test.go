package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonPhraseKnownCodes(t *testing.T) {
	assert.Equal(t, "OK", ReasonPhrase(200))
	assert.Equal(t, "Not Found", ReasonPhrase(404))
	assert.Equal(t, "Internal Server Error", ReasonPhrase(500))
}

func TestReasonPhraseUnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "Unknown Status", ReasonPhrase(799))
}
