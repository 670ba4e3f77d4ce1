// Package dubbing drives an asynchronous server-side dubbing job: submit the
// clip, poll the job's status until it is dubbed, fetch the rendered audio.
package dubbing

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

	"github.com/google/uuid"
	"sosconnect-go/internal/types"
)

// Status is the service-reported job state.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusProcessing   Status = "processing"
	StatusTranscribing Status = "transcribing"
	StatusAligning     Status = "aligning"
	StatusDubbing      Status = "dubbing"
	StatusRendering    Status = "rendering"
	StatusInProgress   Status = "in_progress"
	StatusDubbed       Status = "dubbed"
)

// inProgress is the set of states the job may sit in while still healthy.
// Anything outside this set that is not "dubbed" is terminal failure.
var inProgress = map[Status]bool{
	StatusQueued:       true,
	StatusProcessing:   true,
	StatusTranscribing: true,
	StatusAligning:     true,
	StatusDubbing:      true,
	StatusRendering:    true,
	StatusInProgress:   true,
}

type submitResponse struct {
	DubbingID string `json:"dubbing_id"`
}

type statusResponse struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Client is the thin REST surface of the dubbing API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Submit uploads the asset in automatic mode and returns the job id. The
// source language is deliberately omitted so the service auto-detects it.
func (c *Client) Submit(ctx context.Context, media types.MediaAsset, targetLang string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("mode", "automatic")
	w.WriteField("target_lang", targetLang)
	w.WriteField("name", "SOSConnect_Dub_"+uuid.New().String())
	part, err := w.CreateFormFile("file", "source_clip."+fileExt(media.Mime))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(media.Data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dubbing", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", &types.SubmissionError{Body: string(body)}
	}

	var out submitResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if out.DubbingID == "" {
		return "", &types.SubmissionError{Body: string(body)}
	}
	return out.DubbingID, nil
}

// JobStatus performs a single status check and returns the reported state
// plus the failure reason, when the service includes one.
func (c *Client) JobStatus(ctx context.Context, jobID string) (Status, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dubbing/"+jobID, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("dubbing status check failed: %s", string(body))
	}

	var out statusResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("decode status response: %w", err)
	}
	return out.Status, out.Error, nil
}

// FetchAudio downloads the rendered audio. Valid only once the job reports
// dubbed.
func (c *Client) FetchAudio(ctx context.Context, jobID, targetLang string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dubbing/"+jobID+"/audio/"+targetLang, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.FetchError{Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}

func fileExt(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 && i+1 < len(mime) {
		ext := mime[i+1:]
		if j := strings.IndexByte(ext, ';'); j >= 0 {
			ext = ext[:j]
		}
		return ext
	}
	return "bin"
}
