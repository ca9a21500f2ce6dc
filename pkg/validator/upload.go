package validator

import (
	"errors"
	"strings"
)

// Default upload constraints
const (
	DefaultMaxUploadSize = 500 * 1024 * 1024 // 500MB, showcase videos included
)

// DefaultAllowedMimeTypes contains the default whitelist of allowed MIME
// types: the studio's try-on imagery plus rendered video formats.
var DefaultAllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"video/mp4":  true,
	"video/webm": true,
}

// UploadConfig defines constraints for uploads and ingests.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// DefaultUploadConfig returns the default upload configuration.
func DefaultUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxFileSize:      DefaultMaxUploadSize,
		AllowedMimeTypes: DefaultAllowedMimeTypes,
	}
}

// FromLists builds an UploadConfig from configuration values, falling back
// to defaults for missing pieces.
func FromLists(maxSize int64, allowedTypes []string) *UploadConfig {
	cfg := DefaultUploadConfig()
	if maxSize > 0 {
		cfg.MaxFileSize = maxSize
	}
	if len(allowedTypes) > 0 {
		allowed := make(map[string]bool, len(allowedTypes))
		for _, t := range allowedTypes {
			allowed[strings.ToLower(strings.TrimSpace(t))] = true
		}
		cfg.AllowedMimeTypes = allowed
	}
	return cfg
}

// ValidateFileSize checks if the declared size is within the allowed limit.
// A zero or unknown size passes; the store enforces hard limits.
func (c *UploadConfig) ValidateFileSize(size int64) error {
	if size > c.MaxFileSize {
		return errors.New("file too large")
	}
	return nil
}

// ValidateMimeType checks if the MIME type is in the allowed whitelist.
func (c *UploadConfig) ValidateMimeType(mimeType string) error {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if normalized == "" {
		return errors.New("missing content type")
	}
	// Handle MIME types with parameters (e.g., "video/mp4; codecs=avc1")
	if idx := strings.Index(normalized, ";"); idx > 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	if !c.AllowedMimeTypes[normalized] {
		return errors.New("unsupported file type")
	}
	return nil
}

// Validate performs full validation on an upload request.
func (c *UploadConfig) Validate(size int64, mimeType string) error {
	if err := c.ValidateFileSize(size); err != nil {
		return err
	}
	return c.ValidateMimeType(mimeType)
}
