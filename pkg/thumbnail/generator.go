package thumbnail

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/assetdeck/assetdeck/pkg/storage"
	"github.com/assetdeck/assetdeck/pkg/types"
)

const (
	imageMaxDimension = 300
	imageQuality      = 80

	videoMaxDimension = 600
	videoQuality      = 92
	videoTimeout      = 10 * time.Second
)

// Input describes the uploaded file a thumbnail is derived from.
type Input struct {
	WorkspaceID string
	FileID      string
	MimeType    string
	Data        []byte
}

// Result carries the stored thumbnail's path and public URL. A nil result
// with a nil error means the file type has no thumbnail.
type Result struct {
	Path string
	URL  string
}

// Generator derives downscaled JPEG previews from uploaded images and
// videos and stores them under a thumbnails/<workspace>/ prefix.
// Generation failure is never fatal to an upload; callers degrade to
// "no thumbnail".
type Generator struct {
	store      storage.ObjectStore
	ffmpegPath string
	logger     *log.Logger
}

// NewGenerator creates a thumbnail generator. ffmpegPath may be empty, in
// which case "ffmpeg" is looked up on PATH for video inputs.
func NewGenerator(store storage.ObjectStore, ffmpegPath string) *Generator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Generator{
		store:      store,
		ffmpegPath: ffmpegPath,
		logger:     log.New(os.Stdout, "[Thumbnail] ", log.LstdFlags),
	}
}

// Generate derives and stores a thumbnail for the input. Non-image,
// non-video types resolve immediately to no thumbnail.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	var (
		encoded []byte
		err     error
	)

	switch types.CategoryOf(in.MimeType) {
	case types.CategoryImage:
		encoded, err = g.renderImage(in.Data, imageMaxDimension, imageQuality)
	case types.CategoryVideo:
		videoCtx, cancel := context.WithTimeout(ctx, videoTimeout)
		defer cancel()
		encoded, err = g.renderVideoFrame(videoCtx, in.Data)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("thumbnails/%s/%s.jpg", in.WorkspaceID, in.FileID)
	if err := g.upload(ctx, path, encoded); err != nil {
		return nil, err
	}

	return &Result{Path: path, URL: g.store.URL(path)}, nil
}
