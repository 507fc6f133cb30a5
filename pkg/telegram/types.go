package telegram

import "encoding/json"

// apiResponse is the envelope every Bot API call answers with.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// File is the getFile result: an opaque file_id resolved to a server-side
// path that can be fetched from the file endpoint.
type File struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size,omitempty"`
	FilePath string `json:"file_path"`
}

// Update is the subset of a Bot API webhook update this system consumes.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
	// Channel posts carry the same shape as direct messages.
	ChannelPost *Message `json:"channel_post,omitempty"`
}

// Message carries the content fields the ingestion adapter extracts.
type Message struct {
	MessageID int64       `json:"message_id"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Video     *Video      `json:"video,omitempty"`
	Chat      Chat        `json:"chat"`
}

// PhotoSize is one resolution variant of a photo; the Bot API sends them
// smallest first.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

// Video references an uploaded video file.
type Video struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// Chat identifies the conversation an update came from.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}
