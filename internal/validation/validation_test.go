package validation

import (
	"strings"
	"testing"

	"telebook/internal/errors"
	"telebook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateIngest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.IngestRequest
		wantErr bool
	}{
		{
			name: "plain text",
			req:  &models.IngestRequest{Text: "hello", MediaType: models.MediaTypeText},
		},
		{
			name: "image with caption",
			req:  &models.IngestRequest{Text: "caption", MediaType: models.MediaTypeImage, MediaReference: "file-1"},
		},
		{
			name: "image without caption",
			req:  &models.IngestRequest{MediaType: models.MediaTypeImage, MediaReference: "file-1"},
		},
		{
			name:    "nil request",
			req:     nil,
			wantErr: true,
		},
		{
			name:    "empty item",
			req:     &models.IngestRequest{MediaType: models.MediaTypeText},
			wantErr: true,
		},
		{
			name:    "whitespace-only text",
			req:     &models.IngestRequest{Text: "  \n\t ", MediaType: models.MediaTypeText},
			wantErr: true,
		},
		{
			name: "text at maximum length",
			req:  &models.IngestRequest{Text: strings.Repeat("a", 2200), MediaType: models.MediaTypeText},
		},
		{
			name:    "text over maximum length",
			req:     &models.IngestRequest{Text: strings.Repeat("a", 2201), MediaType: models.MediaTypeText},
			wantErr: true,
		},
		{
			name: "multibyte text counted in runes",
			req:  &models.IngestRequest{Text: strings.Repeat("é", 2200), MediaType: models.MediaTypeText},
		},
		{
			name:    "unknown media type",
			req:     &models.IngestRequest{Text: "x", MediaType: models.MediaType("gif")},
			wantErr: true,
		},
		{
			name:    "video without reference",
			req:     &models.IngestRequest{Text: "x", MediaType: models.MediaTypeVideo},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
