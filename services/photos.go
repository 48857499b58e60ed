package services

import (
	"regexp"

	"property-harvester/models"
)

var (
	// smallThumbRegexp matches the small-thumbnail suffix, e.g. "...-m123s.jpg"
	smallThumbRegexp = regexp.MustCompile(`s\.jpg$`)
	// encodedThumbRegexp matches encoded-size suffixes, e.g. "...e_rw_960.jpg"
	encodedThumbRegexp = regexp.MustCompile(`e_\w+\.jpg$`)
)

const originalSuffix = "od.jpg"

// ExtractPhotoURL returns the URL behind a photo reference, upgraded from a
// thumbnail to the original-dimensions image when the suffix is recognised.
// A nil reference yields "".
func ExtractPhotoURL(ref *models.PhotoRef) string {
	if ref == nil || ref.Href == "" {
		return ""
	}
	url := smallThumbRegexp.ReplaceAllString(ref.Href, originalSuffix)
	return encodedThumbRegexp.ReplaceAllString(url, originalSuffix)
}
