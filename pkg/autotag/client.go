package autotag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// Payload is the JSON body posted to the auto-tagging webhook after an
// upload completes.
type Payload struct {
	FileID       string         `json:"fileId"`
	FileName     string         `json:"fileName"`
	OriginalName string         `json:"originalName"`
	FileType     string         `json:"fileType"`
	FileCategory types.Category `json:"fileCategory"`
	FileSize     int64          `json:"fileSize"`
	FileURL      string         `json:"fileUrl"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	FilePath     string         `json:"filePath"`
	WorkspaceID  string         `json:"workspaceId"`
	ProjectID    string         `json:"projectId,omitempty"`
	FolderID     string         `json:"folderId,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Context      PayloadContext `json:"context"`
}

// PayloadContext carries workspace context for the tagging service.
type PayloadContext struct {
	Workspace    string `json:"workspace"`
	UploadSource string `json:"uploadSource"`
}

// Response is what the webhook answers with: either an acknowledgement that
// processing was queued, or an immediate tag set to apply.
type Response struct {
	Queued bool     `json:"queued"`
	Tags   []string `json:"tags"`
}

// TagApplier persists tags returned synchronously by the webhook.
type TagApplier interface {
	SetTags(fileID string, tags []string) error
}

// Client notifies the external auto-tagging webhook about uploads. All
// failures are logged and swallowed; a webhook outage never affects the
// upload that triggered the call.
type Client struct {
	endpoint string
	http     *http.Client
	applier  TagApplier
	logger   *log.Logger
}

// NewClient creates a webhook client. An empty endpoint disables dispatch.
func NewClient(endpoint string, applier TagApplier) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		applier:  applier,
		logger:   log.New(os.Stdout, "[AutoTag] ", log.LstdFlags),
	}
}

// Enabled reports whether a webhook endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Notify posts the payload to the webhook. If the webhook answers with an
// immediate tag set, the tags are applied to the file record directly.
// Any error is logged and swallowed.
func (c *Client) Notify(ctx context.Context, payload Payload) {
	if !c.Enabled() {
		return
	}

	if err := c.notify(ctx, payload); err != nil {
		c.logger.Printf("auto-tagging webhook failed for %s: %v", payload.FileID, err)
	}
}

func (c *Client) notify(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// An empty or non-JSON body is treated as a plain acknowledgement.
		return nil
	}

	if len(result.Tags) > 0 && c.applier != nil {
		if err := c.applier.SetTags(payload.FileID, result.Tags); err != nil {
			return fmt.Errorf("failed to apply webhook tags: %w", err)
		}
		c.logger.Printf("applied %d webhook tags to %s", len(result.Tags), payload.FileID)
	}

	return nil
}
