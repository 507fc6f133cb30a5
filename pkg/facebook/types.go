package facebook

import "fmt"

// GraphError is the uniform error envelope the Graph API wraps failures in:
// {"error": {"message": "...", "type": "...", "code": N}}.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func (e *GraphError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("graph API error (%s, code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("graph API error: %s", e.Message)
}

type errorEnvelope struct {
	Error *GraphError `json:"error,omitempty"`
}

// PostResponse is the id a successful feed or photo publish returns.
type PostResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

// startResponse is phase one of the resumable video protocol: a session
// identifier, a provisional video id and the first transfer window.
type startResponse struct {
	UploadSessionID string `json:"upload_session_id"`
	VideoID         string `json:"video_id"`
	StartOffset     string `json:"start_offset"`
	EndOffset       string `json:"end_offset"`
}

// transferResponse reports the next transfer window; the upload is complete
// when start_offset catches up with the file size.
type transferResponse struct {
	StartOffset string `json:"start_offset"`
	EndOffset   string `json:"end_offset"`
}

type finishResponse struct {
	Success bool `json:"success"`
}

// VideoUploadState is the persistable progress of a resumable upload. When a
// transfer phase dies partway the caller keeps this alongside the queue item
// so the next attempt resumes from Offset instead of restarting the session.
type VideoUploadState struct {
	SessionID string
	VideoID   string
	Offset    int64
}
