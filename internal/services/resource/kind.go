package resource

import "bytes"

// FileKind is the format of a resource, sniffed from its bytes
type FileKind int

const (
	KindUnknown FileKind = iota
	KindPainting
	KindTexture
	KindScript
	KindVoice
	KindLevel
	KindPlan
	KindFileArchive
	KindJpeg
	KindPng
)

var kindNames = map[FileKind]string{
	KindUnknown:     "Unknown",
	KindPainting:    "Painting",
	KindTexture:     "Texture",
	KindScript:      "Script",
	KindVoice:       "Voice",
	KindLevel:       "Level",
	KindPlan:        "Plan",
	KindFileArchive: "FileArchive",
	KindJpeg:        "Jpeg",
	KindPng:         "Png",
}

func (k FileKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ContentType is the media type a resource of this kind is served as
func (k FileKind) ContentType() string {
	switch k {
	case KindJpeg:
		return "image/jpeg"
	case KindPng:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// headerKinds maps the three byte ASCII header of game formats
var headerKinds = map[string]FileKind{
	"PTG": KindPainting,
	"TEX": KindTexture,
	"FSH": KindScript,
	"VOP": KindVoice,
	"LVL": KindLevel,
	"PLN": KindPlan,
}

var (
	farcFooter = []byte("FARC")
	jpegMagic  = []byte{0xFF, 0xD8, 0xFF, 0xE0}
	pngMagic   = []byte{0x89, 0x50, 0x4E, 0x47}
)

// Sniff classifies data. The FARC footer is checked before any header.
func Sniff(data []byte) FileKind {
	if len(data) == 0 {
		return KindUnknown
	}
	if bytes.HasSuffix(data, farcFooter) {
		return KindFileArchive
	}
	if len(data) >= 3 {
		if kind, ok := headerKinds[string(data[:3])]; ok {
			return kind
		}
	}
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return KindJpeg
	case bytes.HasPrefix(data, pngMagic):
		return KindPng
	}
	return KindUnknown
}

// safeKinds are the formats accepted when the unsafe file check is on
var safeKinds = map[FileKind]bool{
	KindPainting: true,
	KindTexture:  true,
	KindLevel:    true,
	KindVoice:    true,
	KindPlan:     true,
	KindJpeg:     true,
	KindPng:      true,
}
