package helpers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder    = "avatars"
	EventsFolder    = "events"
	CalendarsFolder = "calendars"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input and collapses non-alphanumeric runs into
// single hyphens.
func Slugify(s string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// GenerateSlug derives a URL slug from a title with a base36 time suffix
// so two events with the same title never collide.
func GenerateSlug(title string) string {
	suffix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	base := Slugify(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, imagePaths []string, folder string) ([]string, []string, error) {
	var urls []string
	var publicIDs []string

	for _, filePath := range imagePaths {
		if strings.TrimSpace(filePath) == "" {
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"blend-app"},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to upload image %s: %v", filePath, err)
		}
		urls = append(urls, uploadResult.SecureURL)
		publicIDs = append(publicIDs, uploadResult.PublicID)
	}

	return urls, publicIDs, nil
}

func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, folder string, publicIDs []string) {
	for _, publicID := range publicIDs {
		_, _ = cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID: publicID,
		})
	}
}
