package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DocumentStorage defines the contract for the document blob store
// (Cloudinary implementation).
type DocumentStorage interface {
	// UploadDocument stores the blob under the given key and returns its
	// publicly resolvable URL. key is the collision-resistant storage path,
	// e.g. "<user_id>/<token>.pdf".
	UploadDocument(ctx context.Context, r io.Reader, key string) (string, error)
	// DeleteDocument removes a stored blob using its public URL. The storage
	// path is not persisted separately, so this is best-effort: it relies on
	// the public ID being recoverable from the URL.
	DeleteDocument(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates a Cloudinary-backed implementation of DocumentStorage.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET to be configured in environment variables.
func NewCloudinaryStorage() (DocumentStorage, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	folder := os.Getenv("CLOUDINARY_UPLOAD_FOLDER")
	if folder == "" {
		folder = "collegease_documents"
	}

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

// UploadDocument uploads a document to Cloudinary and returns the secure URL.
func (s *cloudinaryStorage) UploadDocument(ctx context.Context, r io.Reader, key string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       key,
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
		// Documents are arbitrary binaries (pdf, docx, images); let Cloudinary
		// detect the resource type instead of forcing image handling.
		ResourceType: "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload document to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// DeleteDocument deletes a document from Cloudinary.
func (s *cloudinaryStorage) DeleteDocument(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := s.extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete document from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID attempts to extract the public ID from a Cloudinary URL.
// Example: https://res.cloudinary.com/demo/raw/upload/v123456789/folder/sample.pdf -> folder/sample
func (s *cloudinaryStorage) extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	path := u.Path
	// Path is roughly /<cloud_name>/<type>/upload/v<version>/<folder>/<file>.<ext>
	// or /<cloud_name>/<type>/upload/<folder>/<file>.<ext>

	parts := strings.Split(path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	rest := parts[uploadIndex+1:]
	// Skip version segment if present (v123456789)
	if len(rest) > 0 && strings.HasPrefix(rest[0], "v") {
		allDigits := len(rest[0]) > 1
		for _, ch := range rest[0][1:] {
			if ch < '0' || ch > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			rest = rest[1:]
		}
	}

	if len(rest) == 0 {
		return ""
	}

	publicID := strings.Join(rest, "/")

	// Strip the file extension from the last segment
	if dot := strings.LastIndex(publicID, "."); dot > strings.LastIndex(publicID, "/") {
		publicID = publicID[:dot]
	}

	return publicID
}
