package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
servers:
  - host: "0.0.0.0"
    port: 9090
    server_name: test
    client_max_body_size: 1048576
    locations:
      - path: /
        root: ./www
        index: index.html
        methods: [GET]
      - path: /upload
        root: ./www
        methods: [GET, POST]
        upload_path: ./www/upload
        autoindex: true
`

func TestParseYAML(t *testing.T) {
	f, err := parseYAML([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, f.Servers, 1)

	sc := f.Servers[0]
	assert.Equal(t, uint16(9090), sc.Port)
	assert.Equal(t, "0.0.0.0", sc.Host.String())
	require.Len(t, sc.Locations, 2)
	assert.True(t, sc.Locations[1].Allows(MethodPost))
}

func TestParseYAMLDefaultsHostWhenEmpty(t *testing.T) {
	f, err := parseYAML([]byte(`
servers:
  - port: 80
    locations:
      - path: /
        root: ./www
`))
	require.NoError(t, err)
	assert.Equal(t, net4zeroString, f.Servers[0].Host.String())
}

const net4zeroString = "0.0.0.0"
