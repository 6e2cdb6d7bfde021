package autotag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplier struct {
	fileID string
	tags   []string
	err    error
}

func (f *fakeApplier) SetTags(fileID string, tags []string) error {
	f.fileID = fileID
	f.tags = tags
	return f.err
}

func testPayload() Payload {
	return Payload{
		FileID:       "file-1",
		FileName:     "photo.jpg",
		OriginalName: "photo.jpg",
		FileType:     "image/jpeg",
		FileCategory: "image",
		FileSize:     1234,
		FileURL:      "http://localhost/files/photo.jpg",
		FilePath:     "ws1/photo.jpg",
		WorkspaceID:  "ws1",
		Timestamp:    time.Now().UTC(),
		Context:      PayloadContext{Workspace: "ws1", UploadSource: "web"},
	}
}

func TestNotifyAppliesImmediateTags(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Response{Tags: []string{"sunset", "beach"}})
	}))
	defer server.Close()

	applier := &fakeApplier{}
	client := NewClient(server.URL, applier)

	client.Notify(context.Background(), testPayload())

	assert.Equal(t, "file-1", received.FileID)
	assert.Equal(t, "ws1", received.Context.Workspace)
	assert.Equal(t, "file-1", applier.fileID)
	assert.Equal(t, []string{"sunset", "beach"}, applier.tags)
}

func TestNotifyAcknowledgementLeavesTagsAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Queued: true})
	}))
	defer server.Close()

	applier := &fakeApplier{}
	client := NewClient(server.URL, applier)

	client.Notify(context.Background(), testPayload())
	assert.Empty(t, applier.fileID)
}

func TestNotifySwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeApplier{})

	// Must not panic or surface an error.
	client.Notify(context.Background(), testPayload())
}

func TestNotifyDisabledWithoutEndpoint(t *testing.T) {
	applier := &fakeApplier{}
	client := NewClient("", applier)

	assert.False(t, client.Enabled())
	client.Notify(context.Background(), testPayload())
	assert.Empty(t, applier.fileID)
}

func TestNotifyNonJSONBodyIsAcknowledgement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	applier := &fakeApplier{}
	client := NewClient(server.URL, applier)

	client.Notify(context.Background(), testPayload())
	assert.Empty(t, applier.fileID)
}
