// Package instagram implements the private mobile API client: session
// transport with cookie state and signed request bodies, the login
// sequence, and the photo, video and album upload pipelines.
//
// All mutating calls carry an HMAC-SHA256 signed-body envelope. Media
// uploads are multi-phase: raw bytes go up first (videos in four
// Content-Range chunks against a server-assigned upload URL), then a
// configure call binds the uploaded asset to its metadata, correlated by
// a client-chosen upload id.
//
// A Client is not safe for concurrent use; the API assumes one in-flight
// request per session.
package instagram
