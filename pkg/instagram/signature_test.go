package instagram

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignPayloadEnvelope(t *testing.T) {
	signed := SignPayload(`{"key":"value"}`)

	require.True(t, strings.HasPrefix(signed, "ig_sig_key_version=4&signed_body="))

	rest := strings.TrimPrefix(signed, "ig_sig_key_version=4&signed_body=")
	parts := strings.SplitN(rest, ".", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 64, "signature must be hex-encoded sha256")

	decoded, err := url.QueryUnescape(parts[1])
	require.NoError(t, err)
	assert.Equal(t, `{"key":"value"}`, decoded)
}

func TestSignPayloadRoundTrip(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"username":"alice","password":"p&ss=word+1"}`,
		`{"caption":"multi\nline with spaces and émoji ✓"}`,
		`{"nested":{"list":[1,2,3],"flag":true}}`,
	}

	for _, payload := range payloads {
		assert.True(t, VerifySignature(SignPayload(payload)), "payload: %s", payload)
	}
}

func TestSignPayloadDeterministic(t *testing.T) {
	assert.Equal(t, SignPayload(`{"a":1}`), SignPayload(`{"a":1}`))
	assert.NotEqual(t, SignPayload(`{"a":1}`), SignPayload(`{"a":2}`))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	signed := SignPayload(`{"amount":10}`)

	tampered := strings.Replace(signed, "amount%22%3A10", "amount%22%3A99", 1)
	require.NotEqual(t, signed, tampered)
	assert.False(t, VerifySignature(tampered))
}

func TestVerifySignatureRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"garbage",
		"ig_sig_key_version=4&signed_body=",
		"ig_sig_key_version=4&signed_body=tooshort.%7B%7D",
		"ig_sig_key_version=3&signed_body=" + strings.Repeat("a", 64) + ".%7B%7D",
		"ig_sig_key_version=4&signed_body=" + strings.Repeat("a", 64) + "%7B%7D", // missing dot
	}

	for _, c := range cases {
		assert.False(t, VerifySignature(c), "input: %q", c)
	}
}
