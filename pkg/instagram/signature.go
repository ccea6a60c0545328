package instagram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// SignPayload wraps a JSON payload in the signed-body envelope required
// by every mutating endpoint:
//
//	ig_sig_key_version={V}&signed_body={hmac_sha256_hex}.{urlencoded_payload}
//
// Pure function; never fails on well-formed UTF-8 input.
func SignPayload(payload string) string {
	mac := hmac.New(sha256.New, []byte(sigKey))
	mac.Write([]byte(payload))
	return fmt.Sprintf("ig_sig_key_version=%s&signed_body=%s.%s",
		SigKeyVersion, hex.EncodeToString(mac.Sum(nil)), url.QueryEscape(payload))
}

// VerifySignature checks a signed-body envelope against the shared
// secret. Exposed for tests and debugging tools.
func VerifySignature(signedBody string) bool {
	const prefix = "ig_sig_key_version=" + SigKeyVersion + "&signed_body="
	if len(signedBody) < len(prefix)+65 || signedBody[:len(prefix)] != prefix {
		return false
	}
	rest := signedBody[len(prefix):]
	if rest[64] != '.' {
		return false
	}
	sig, encoded := rest[:64], rest[65:]

	payload, err := url.QueryUnescape(encoded)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(sigKey))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}
