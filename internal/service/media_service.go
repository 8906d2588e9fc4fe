package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
)

// ErrMissingModule indicates the video listing was called without a module.
var ErrMissingModule = errors.New("module parameter is required")

// ErrUnsupportedMediaType indicates an upload with a disallowed content type.
var ErrUnsupportedMediaType = errors.New("unsupported file type")

// MediaRootFolder names the only root folder exposed by the media listing.
const MediaRootFolder = "Home"

// BlobStorage abstracts the cloud storage backend used by the media library.
type BlobStorage interface {
	List(ctx context.Context, prefix string) ([]BlobItem, error)
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// MediaService exposes the media library: folder tree, video listings and
// uploads.
type MediaService interface {
	FolderTree(ctx context.Context) ([]*dto.FolderNode, error)
	ListVideos(ctx context.Context, module string) (dto.VideoListResponse, error)
	Upload(ctx context.Context, file *multipart.FileHeader) (dto.UploadResponse, error)
}

type mediaService struct {
	storage BlobStorage
	logger  zerolog.Logger
}

// NewMediaService constructs a MediaService instance.
func NewMediaService(storage BlobStorage, logger zerolog.Logger) MediaService {
	return &mediaService{
		storage: storage,
		logger:  logger.With().Str("component", "media_service").Logger(),
	}
}

func (s *mediaService) FolderTree(ctx context.Context) ([]*dto.FolderNode, error) {
	items, err := s.storage.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list storage assets: %w", err)
	}

	tree := BuildFolderTree(items)

	return FilterRoots(tree, MediaRootFolder), nil
}

func (s *mediaService) ListVideos(ctx context.Context, module string) (dto.VideoListResponse, error) {
	if module == "" {
		return dto.VideoListResponse{}, ErrMissingModule
	}

	items, err := s.storage.List(ctx, module+"/")
	if err != nil {
		return dto.VideoListResponse{}, fmt.Errorf("failed to list storage assets: %w", err)
	}

	response := dto.VideoListResponse{Videos: make([]string, 0, len(items))}
	for _, item := range items {
		response.Videos = append(response.Videos, item.URL)
	}

	return response, nil
}

func (s *mediaService) Upload(ctx context.Context, file *multipart.FileHeader) (dto.UploadResponse, error) {
	if err := validateMediaType(file); err != nil {
		return dto.UploadResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	url, err := s.storage.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info().Str("file", file.Filename).Msg("media uploaded")

	return dto.UploadResponse{URL: url}, nil
}

func validateMediaType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "image/png", "image/jpeg", "video/mp4", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mime.String())
}
