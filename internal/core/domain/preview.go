package domain

import "strings"

// PreviewKind selects how a file is rendered when viewed
type PreviewKind int

const (
	PreviewNone PreviewKind = iota // placeholder with an export affordance
	PreviewImage
	PreviewVideo
	PreviewAudio
	PreviewPDF
)

// PreviewKindFor picks the preview branch from the declared MIME type
func PreviewKindFor(mimeType string) PreviewKind {
	mt := NormalizeMime(mimeType)

	switch {
	case strings.HasPrefix(mt, "image/"):
		return PreviewImage
	case strings.HasPrefix(mt, "video/"):
		return PreviewVideo
	case strings.HasPrefix(mt, "audio/"):
		return PreviewAudio
	case mt == MimePDF:
		return PreviewPDF
	default:
		return PreviewNone
	}
}

// Inline reports whether the kind renders in place rather than as a placeholder
func (k PreviewKind) Inline() bool {
	return k != PreviewNone
}

func (k PreviewKind) String() string {
	switch k {
	case PreviewImage:
		return "image"
	case PreviewVideo:
		return "video"
	case PreviewAudio:
		return "audio"
	case PreviewPDF:
		return "pdf"
	default:
		return "none"
	}
}
