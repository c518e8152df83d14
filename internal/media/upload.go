// Package media handles voice-note binaries: uploading them to the media
// endpoint and playing them back through an external player.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// MaxUploadSize is enforced client-side before any bytes hit the wire.
const MaxUploadSize = 5 * 1024 * 1024 // 5MB

// APIError represents a non-2xx response from the media endpoint.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("media upload error: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("media upload error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("media upload error (%d)", e.Status)
}

type apiErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadResult is returned by the media endpoint after a successful upload.
type UploadResult struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

// Uploader posts voice-note payloads to the media endpoint.
type Uploader struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewUploader constructs an uploader for the given endpoint URL.
func NewUploader(endpoint, token string) (*Uploader, error) {
	value := strings.TrimSpace(endpoint)
	if value == "" {
		return nil, fmt.Errorf("upload endpoint cannot be empty")
	}
	return &Uploader{
		endpoint: value,
		token:    token,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// Upload posts the audio blob as the multipart "file" field and decodes the
// resulting media URL and server-measured duration.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename string) (UploadResult, error) {
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("empty audio payload")
	}
	if len(data) > MaxUploadSize {
		return UploadResult{}, fmt.Errorf("audio payload exceeds %d bytes", MaxUploadSize)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload apiErrorPayload
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return UploadResult{}, apiErr
	}

	var result UploadResult
	if err := json.Unmarshal(respData, &result); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	if result.URL == "" {
		return UploadResult{}, fmt.Errorf("upload response missing url")
	}
	return result, nil
}
