package instagram

import "fmt"

const (
	// APIURL is the base URL all endpoints are resolved against
	APIURL = "https://i.instagram.com/api/v1/"

	// SigKeyVersion is reported alongside every signed body
	SigKeyVersion = "4"

	// sigKey is the shared secret for the signed-body HMAC
	sigKey = "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178"

	// volatileSeed folds into the device id derivation
	volatileSeed = "12345"

	// sentryBlockErrorType is the error_type sentinel marking a blocked
	// account; responses carrying it are unrecoverable
	sentryBlockErrorType = "sentry_block"

	// imageCompression is the fixed compression descriptor sent with
	// every photo upload
	imageCompression = `{"lib_name":"jt","lib_version":"1.3.0","quality":"87"}`

	// videoChunkCount is the number of Content-Range chunks a video is
	// split into; fixed by the upload sub-protocol
	videoChunkCount = 4

	// exposeExperiment is the experiment name reported by the
	// post-upload exposure beacon
	exposeExperiment = "ig_android_profile_contextual_feed"
)

// Device identity baked into the user agent and configure payloads.
const (
	deviceManufacturer   = "Xiaomi"
	deviceModel          = "HM 1SW"
	deviceAndroidVersion = 18
	deviceAndroidRelease = "4.3"
)

// UserAgent identifies the mobile build this client impersonates.
var UserAgent = fmt.Sprintf(
	"Instagram 10.26.0 Android (%d/%s; 320dpi; 720x1280; %s; %s; armani; qcom; en_US)",
	deviceAndroidVersion, deviceAndroidRelease, deviceManufacturer, deviceModel,
)

// defaultExperiments is the experiment blob sent by the feature-sync
// bootstrap call when the configuration does not supply one.
const defaultExperiments = "ig_android_profile_contextual_feed," +
	"ig_android_live_follow_from_comments,ig_android_ad_async_ads_universe," +
	"ig_android_universe_video_production,ig_android_offline_story_stickers," +
	"ig_android_stories_video_prefetch,ig_android_direct_inbox_retry"

// Endpoint paths, relative to APIURL.
const (
	epLogin            = "accounts/login/"
	epLogout           = "accounts/logout/"
	epSyncFeatures     = "qe/sync/"
	epExpose           = "qe/expose/"
	epAutocomplete     = "friendships/autocomplete_user_list/"
	epTimelineFeed     = "feed/timeline/"
	epInbox            = "direct_v2/inbox/?"
	epRecentActivity   = "news/inbox/?"
	epUploadPhoto      = "upload/photo/"
	epUploadVideo      = "upload/video/"
	epConfigure        = "media/configure/?"
	epConfigureVideo   = "media/configure/?video=1"
	epConfigureSidecar = "media/configure_sidecar/"
	epDirectText       = "direct_v2/threads/broadcast/text/"
	epDirectShare      = "direct_v2/threads/broadcast/media_share/?media_type=photo"
)

// fetchHeadersEndpoint builds the pre-login cookie priming endpoint. The
// guid must be a dash-stripped identifier.
func fetchHeadersEndpoint(guid string) string {
	return fmt.Sprintf("si/fetch_headers/?challenge_type=signup&guid=%s", guid)
}

// deviceSettings returns the device block attached to configure payloads.
func deviceSettings() map[string]interface{} {
	return map[string]interface{}{
		"manufacturer":    deviceManufacturer,
		"model":           deviceModel,
		"android_version": deviceAndroidVersion,
		"android_release": deviceAndroidRelease,
	}
}
