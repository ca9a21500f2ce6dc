// Package keys defines the object key namespace shared by every component.
// The layout must stay stable: external jobs, presigned clients and the
// store-side lifecycle rule all address objects by these prefixes.
package keys

import (
	"fmt"
	"strings"
)

const (
	// IdentityPrefix holds private per-user identity photos:
	// identity/{userId}/front.jpg
	IdentityPrefix = "identity/"

	// ShowcasePrefix holds private generated videos, accessed only through
	// signed URLs: showcase/{videoId}.mp4
	ShowcasePrefix = "showcase/"

	// PublicPrefix holds publicly readable static assets.
	PublicPrefix = "public/"

	// TrashPrefix mirrors soft-deleted objects under their original key:
	// trash/identity/{userId}/front.jpg
	TrashPrefix = "trash/"
)

// TrashKey returns the trash mirror key for an original key.
func TrashKey(originalKey string) string {
	return TrashPrefix + originalKey
}

// OriginalKey strips the trash prefix. The second return is false when the
// key is not a trash key.
func OriginalKey(trashKey string) (string, bool) {
	if !strings.HasPrefix(trashKey, TrashPrefix) {
		return trashKey, false
	}
	return strings.TrimPrefix(trashKey, TrashPrefix), true
}

// IsTrashed reports whether key lives in the trash namespace.
func IsTrashed(key string) bool {
	return strings.HasPrefix(key, TrashPrefix)
}

// IdentityKey builds a per-user identity key from path segments.
func IdentityKey(userID string, parts ...string) string {
	return IdentityPrefix + userID + "/" + strings.Join(parts, "/")
}

// ShowcaseKey builds the key of a rendered showcase video.
func ShowcaseKey(videoID string) string {
	return ShowcasePrefix + videoID + ".mp4"
}

// UserTrashPrefix returns the listing prefix for one user's trashed
// identity objects.
func UserTrashPrefix(userID string) string {
	return fmt.Sprintf("%s%s%s/", TrashPrefix, IdentityPrefix, userID)
}

// IsPublic reports whether key is served without signing.
func IsPublic(key string) bool {
	return strings.HasPrefix(key, PublicPrefix)
}

// Validate rejects keys that escape the namespace or are empty.
func Validate(key string) error {
	if key == "" {
		return fmt.Errorf("object key is empty")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("object key must not start with '/': %s", key)
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("object key must not contain '..': %s", key)
	}
	return nil
}
