package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransportKind(t *testing.T) {
	k, err := ParseTransportKind(" REST ")
	require.NoError(t, err)
	assert.Equal(t, TransportREST, k)

	k, err = ParseTransportKind("smtp")
	require.NoError(t, err)
	assert.Equal(t, TransportSMTP, k)

	_, err = ParseTransportKind("carrier-pigeon")
	assert.Error(t, err)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "a@x.edu", Address{Email: "a@x.edu"}.String())
	assert.Equal(t, "A <a@x.edu>", Address{Name: "A", Email: "a@x.edu"}.String())
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "emailjs", Status: 400, Body: "bad template"}
	assert.Equal(t, "emailjs: provider rejected message: status 400: bad template", err.Error())
}
