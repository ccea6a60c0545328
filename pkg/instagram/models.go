package instagram

// LoginResponse is the decoded body of a successful login call.
type LoginResponse struct {
	LoggedInUser LoggedInUser `json:"logged_in_user"`
	Status       string       `json:"status"`
}

// LoggedInUser carries the numeric account identifier assigned by the
// server. PK is the only field the client depends on.
type LoggedInUser struct {
	PK        int64  `json:"pk"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	IsPrivate bool   `json:"is_private"`
}

// VideoUploadResponse is the decoded body of the video upload initiation
// call. The fourth entry of VideoUploadURLs carries the upload URL and
// job token the chunk uploads use.
type VideoUploadResponse struct {
	VideoUploadURLs []VideoUploadURL `json:"video_upload_urls"`
	UploadID        string           `json:"upload_id"`
	Status          string           `json:"status"`
}

// VideoUploadURL is one server-assigned upload target.
type VideoUploadURL struct {
	URL     string  `json:"url"`
	Job     string  `json:"job"`
	Expires float64 `json:"expires"`
}

// APIError is the error shape of non-200 response bodies.
type APIError struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Status    string `json:"status"`
}
