package telegram

import (
	"encoding/json"
	"fmt"
)

// Content is the reduced form of an update the ingestion entrypoint consumes:
// the text, what kind of media rides along and the file reference to fetch it
// with. MediaType is one of "text", "image", "video".
type Content struct {
	Text      string
	MediaType string
	FileID    string
	ChatID    int64
}

// ParseUpdate decodes a webhook body and extracts the content tuple. Updates
// without a message (edits, callbacks and other event kinds this system does
// not handle) return nil content and no error.
func ParseUpdate(body []byte) (*Content, error) {
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return nil, fmt.Errorf("failed to decode update: %w", err)
	}

	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil {
		return nil, nil
	}

	return ExtractContent(msg), nil
}

// ExtractContent reduces a message to {text, mediaType, fileId}. Photos come
// in multiple resolutions smallest first; the largest is kept.
func ExtractContent(msg *Message) *Content {
	content := &Content{
		MediaType: "text",
		ChatID:    msg.Chat.ID,
		Text:      msg.Text,
	}

	if content.Text == "" {
		content.Text = msg.Caption
	}

	switch {
	case len(msg.Photo) > 0:
		content.MediaType = "image"
		content.FileID = largestPhoto(msg.Photo).FileID
	case msg.Video != nil:
		content.MediaType = "video"
		content.FileID = msg.Video.FileID
	}

	return content
}

func largestPhoto(sizes []PhotoSize) PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
