package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want FileKind
	}{
		{"empty", nil, KindUnknown},
		{"painting", []byte("PTGb....."), KindPainting},
		{"texture", []byte("TEX payload"), KindTexture},
		{"script", []byte("FSHb"), KindScript},
		{"voice", []byte("VOPb"), KindVoice},
		{"level", []byte("LVLb0123"), KindLevel},
		{"plan", []byte("PLNb"), KindPlan},
		{"archive", []byte("0123FARC"), KindFileArchive},
		{"archive only footer", []byte("FARC"), KindFileArchive},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, KindJpeg},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, KindPng},
		{"jpeg wrong marker", []byte{0xFF, 0xD8, 0xFF, 0xE1}, KindUnknown},
		{"short", []byte("LV"), KindUnknown},
		{"short binary", []byte{0xFF, 0xD8}, KindUnknown},
		{"lowercase header", []byte("lvlb"), KindUnknown},
		{"garbage", []byte("hello world"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sniff(tc.data))
		})
	}
}

func TestSniffFooterBeatsHeader(t *testing.T) {
	data := append([]byte("LVL"), make([]byte, 64)...)
	data = append(data, []byte("FARC")...)

	assert.Equal(t, KindFileArchive, Sniff(data))
}

func TestFileKindString(t *testing.T) {
	assert.Equal(t, "FileArchive", KindFileArchive.String())
	assert.Equal(t, "Png", KindPng.String())
	assert.Equal(t, "Unknown", FileKind(99).String())
}

func TestFileKindContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", KindJpeg.ContentType())
	assert.Equal(t, "image/png", KindPng.ContentType())
	assert.Equal(t, "application/octet-stream", KindLevel.ContentType())
	assert.Equal(t, "application/octet-stream", KindUnknown.ContentType())
}
