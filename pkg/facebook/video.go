package facebook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// UploadVideo runs the three-phase resumable upload protocol against the
// page's videos edge: start (declare size), transfer (stream chunks tagged
// with the session id and a byte offset), finish (attach the description and
// publish).
//
// When resume carries a session from a previous attempt the start phase is
// skipped and the transfer continues from the recorded offset. On a transfer
// or finish failure the returned state captures the progress made so the
// caller can persist it; a start failure returns no state since there is
// nothing to resume.
func (c *GraphClient) UploadVideo(ctx context.Context, path, description string, resume *VideoUploadState) (string, *VideoUploadState, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat video file: %w", err)
	}
	fileSize := info.Size()

	var state VideoUploadState
	if resume != nil && resume.SessionID != "" {
		state = *resume
		c.logger.WithFields(logrus.Fields{
			"sessionId": state.SessionID,
			"offset":    state.Offset,
		}).Info("Resuming video upload session")
	} else {
		start, err := c.startVideoUpload(ctx, fileSize)
		if err != nil {
			return "", nil, err
		}
		state = VideoUploadState{SessionID: start.UploadSessionID, VideoID: start.VideoID}
	}

	for state.Offset < fileSize {
		chunkLen := c.chunkSize
		if remaining := fileSize - state.Offset; remaining < chunkLen {
			chunkLen = remaining
		}

		if _, err := file.Seek(state.Offset, io.SeekStart); err != nil {
			return "", &state, fmt.Errorf("failed to seek video file: %w", err)
		}

		next, err := c.transferVideoChunk(ctx, state.SessionID, io.LimitReader(file, chunkLen), state.Offset)
		if err != nil {
			return "", &state, err
		}
		if next <= state.Offset {
			// The platform must advance the offset or the loop cannot finish.
			return "", &state, fmt.Errorf("video upload stalled at offset %d", state.Offset)
		}
		state.Offset = next
	}

	if err := c.finishVideoUpload(ctx, state.SessionID, description); err != nil {
		return "", &state, err
	}

	c.logger.WithFields(logrus.Fields{
		"videoId": state.VideoID,
		"size":    fileSize,
	}).Debug("Video upload finished")

	return state.VideoID, nil, nil
}

func (c *GraphClient) startVideoUpload(ctx context.Context, fileSize int64) (*startResponse, error) {
	form := url.Values{}
	form.Set("upload_phase", "start")
	form.Set("file_size", strconv.FormatInt(fileSize, 10))
	form.Set("access_token", c.accessToken)

	var result startResponse
	if err := c.postForm(ctx, c.endpoint("videos"), form, &result); err != nil {
		return nil, err
	}
	if result.UploadSessionID == "" {
		return nil, fmt.Errorf("start phase returned no upload session")
	}

	return &result, nil
}

// transferVideoChunk sends one chunk and returns the next start offset the
// platform expects.
func (c *GraphClient) transferVideoChunk(ctx context.Context, sessionID string, chunk io.Reader, startOffset int64) (int64, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("video_file_chunk", "chunk")
	if err != nil {
		return 0, fmt.Errorf("failed to create chunk part: %w", err)
	}
	if _, err := io.Copy(part, chunk); err != nil {
		return 0, fmt.Errorf("failed to buffer chunk: %w", err)
	}

	_ = writer.WriteField("upload_phase", "transfer")
	_ = writer.WriteField("upload_session_id", sessionID)
	_ = writer.WriteField("start_offset", strconv.FormatInt(startOffset, 10))
	_ = writer.WriteField("access_token", c.accessToken)
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close chunk writer: %w", err)
	}

	var result transferResponse
	if err := c.postMultipart(ctx, c.endpoint("videos"), writer.FormDataContentType(), body, &result); err != nil {
		return 0, err
	}

	next, err := strconv.ParseInt(result.StartOffset, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid start_offset %q in transfer response", result.StartOffset)
	}

	return next, nil
}

func (c *GraphClient) finishVideoUpload(ctx context.Context, sessionID, description string) error {
	form := url.Values{}
	form.Set("upload_phase", "finish")
	form.Set("upload_session_id", sessionID)
	form.Set("description", description)
	form.Set("access_token", c.accessToken)

	var result finishResponse
	if err := c.postForm(ctx, c.endpoint("videos"), form, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("finish phase reported failure")
	}

	return nil
}
