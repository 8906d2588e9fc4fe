package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Asset is a stored file reference returned by listings. Name carries the
// full folder path with "/" separators.
type Asset struct {
	Name string
	URL  string
}

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service implements the FileUploader interface using Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary and returns a secure URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	folder := strings.Trim(s.folder, "/")
	publicID := buildPublicID(name)

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// List pages through every asset type under the configured folder, further
// narrowed by prefix when given.
func (s *Service) List(ctx context.Context, prefix string) ([]Asset, error) {
	scope := strings.Trim(s.folder, "/")
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		if scope != "" {
			scope += "/"
		}
		scope += trimmed
	}

	var assets []Asset
	for _, assetType := range []api.AssetType{api.Image, api.Video, api.File} {
		cursor := ""
		for {
			result, err := s.client.Admin.Assets(ctx, admin.AssetsParams{
				AssetType:  assetType,
				Prefix:     scope,
				MaxResults: 500,
				NextCursor: cursor,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to list assets: %w", err)
			}
			for _, item := range result.Assets {
				assets = append(assets, Asset{Name: assetName(item.PublicID, item.Format), URL: item.SecureURL})
			}
			if result.NextCursor == "" {
				break
			}
			cursor = result.NextCursor
		}
	}

	return assets, nil
}

func assetName(publicID, format string) string {
	if format == "" {
		return publicID
	}
	return publicID + "." + format
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
