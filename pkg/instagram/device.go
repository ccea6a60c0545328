package instagram

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceID derives the stable per-install device identifier from the
// account credentials. The same credential pair always yields the same
// id.
func DeviceID(username, password string) string {
	seed := md5hex(username + password)
	return "android-" + md5hex(seed+volatileSeed)[:16]
}

// NewUUID returns a fresh random UUID, canonical or with the separators
// stripped. The dash-stripped form is used for ephemeral guid query
// parameters; the canonical form for phone_id and the long-lived client
// instance uuid.
func NewUUID(withDashes bool) string {
	u := uuid.New().String()
	if withDashes {
		return u
	}
	return strings.ReplaceAll(u, "-", "")
}

// UploadID returns a millisecond-precision upload correlator. Used by
// standalone photo and video uploads.
func UploadID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// SidecarUploadID returns a UTC-seconds upload correlator. Album
// children and the sidecar configure call use this precision; the server
// correlates multi-phase uploads by the exact string, so the two
// precisions must not be mixed up.
func SidecarUploadID() string {
	return strconv.FormatInt(time.Now().UTC().Unix(), 10)
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
