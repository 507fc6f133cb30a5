package queue

import (
	"crypto/sha256"
	"encoding/hex"

	"telebook/internal/constants"
	"telebook/internal/models"
)

// Hash derives the content fingerprint used for duplicate suppression.
//
// It is a pure function of the normalized (text, mediaType) tuple; media
// binary content is deliberately not hashed, so two different images posted
// with identical captions collide. The digest is truncated: the fingerprint
// is a dedup key, not an integrity check.
func Hash(text string, mediaType models.MediaType) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(mediaType))
	return hex.EncodeToString(h.Sum(nil))[:constants.ContentHashLength]
}
