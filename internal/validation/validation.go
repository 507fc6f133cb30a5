package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"telebook/internal/constants"
	"telebook/internal/errors"
	"telebook/internal/models"
)

// ValidateIngest checks an ingestion request before it is admitted to the
// queue. Text length is measured in runes, matching how the destination
// platform counts characters.
func ValidateIngest(req *models.IngestRequest) error {
	if req == nil {
		return errors.New(errors.ErrCodeValidationFailed, "ingest request cannot be nil")
	}

	if strings.TrimSpace(req.Text) == "" && req.MediaReference == "" {
		return errors.New(errors.ErrCodeValidationFailed, "item must carry text or media")
	}

	if length := utf8.RuneCountInString(req.Text); length > constants.MaxTextLength {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("text length %d exceeds maximum of %d characters", length, constants.MaxTextLength))
	}

	if !req.MediaType.IsValid() {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("unknown media type: %q", req.MediaType))
	}

	if req.MediaType != models.MediaTypeText && req.MediaReference == "" {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("%s item requires a media reference", req.MediaType))
	}

	return nil
}
