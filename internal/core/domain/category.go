package domain

import "strings"

// Category is the display bucket a hidden file is filed under
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// MimePDF is the only MIME type classified as a document
const MimePDF = "application/pdf"

// MimeOctetStream is stored when no type can be determined
const MimeOctetStream = "application/octet-stream"

var categoryOrder = []Category{
	CategoryImage,
	CategoryVideo,
	CategoryAudio,
	CategoryDocument,
	CategoryOther,
}

var categoryDisplayNames = map[Category]string{
	CategoryImage:    "Images",
	CategoryVideo:    "Videos",
	CategoryAudio:    "Audio Files",
	CategoryDocument: "Documents",
	CategoryOther:    "Other Files",
}

// Categories returns every category in display order
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Classify maps a MIME type to its category.
// It is total: anything unmatched, including the empty string, is other.
func Classify(mimeType string) Category {
	mt := NormalizeMime(mimeType)

	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	case mt == MimePDF:
		return CategoryDocument
	default:
		return CategoryOther
	}
}

// NormalizeMime lowercases a MIME type and drops any parameters
// "Text/Plain; charset=utf-8" -> "text/plain"
func NormalizeMime(mimeType string) string {
	mt := mimeType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// ParseCategory validates a user supplied category name
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Valid reports whether c is one of the five known categories
func (c Category) Valid() bool {
	_, ok := categoryDisplayNames[c]
	return ok
}

// OrDefault maps empty or unknown categories to other
func (c Category) OrDefault() Category {
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// DisplayName returns the section title for the category
func (c Category) DisplayName() string {
	return categoryDisplayNames[c.OrDefault()]
}

func (c Category) String() string {
	return string(c)
}
