package pptx

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/pptx/pptxtest"
)

func TestMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"ppt/media/image1.png", "image/png"},
		{"ppt/media/photo.JPG", "image/jpeg"},
		{"ppt/media/photo.jpeg", "image/jpeg"},
		{"ppt/media/anim.gif", "image/gif"},
		{"ppt/media/logo.svg", "image/svg+xml"},
		{"ppt/media/old.bmp", "image/bmp"},
		{"ppt/media/clip.wmf", "image/wmf"},
		{"ppt/media/clip.emf", "image/emf"},
		{"ppt/media/unknown.tiff", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, MIMEType(tt.path))
		})
	}
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("ppt/media/image1.PNG"))
	assert.False(t, IsSupportedImage("ppt/media/media1.mp4"))
	assert.False(t, IsSupportedImage("ppt/media/noext"))
}

func TestResolveMedia(t *testing.T) {
	c := openContainer(t, pptxtest.New().
		Slide(1).
		Media("image1.png", pptxtest.PNG).
		Media("image2.jpeg", []byte("jpeg-bytes")).
		Media("video1.mp4", []byte("video")).
		Part("ppt/slides/image9.png", "not under media"))

	resources, errs, err := ResolveMedia(context.Background(), c, 2)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, resources, 2)

	png := resources["ppt/media/image1.png"]
	assert.Equal(t, "image/png", png.MIMEType)
	assert.Equal(t, pptxtest.PNG, png.Data)

	jpeg := resources["ppt/media/image2.jpeg"]
	assert.Equal(t, "image/jpeg", jpeg.MIMEType)
	assert.Equal(t, 10, jpeg.Size())
}

func TestResolveMedia_CorruptEntryIsSkipped(t *testing.T) {
	payload := []byte("corrupted-payload-marker")
	data := pptxtest.New().
		Slide(1).
		Media("image1.png", pptxtest.PNG).
		Media("image2.png", payload).
		MustBytes()

	// flip a stored byte so the entry fails its checksum on read
	at := bytes.Index(data, payload)
	require.GreaterOrEqual(t, at, 0)
	data[at] ^= 0xFF

	c, err := container.Open(data)
	require.NoError(t, err)

	resources, errs, err := ResolveMedia(context.Background(), c, 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)

	var mediaErr *MediaExtractError
	require.ErrorAs(t, errs[0], &mediaErr)
	assert.Equal(t, "ppt/media/image2.png", mediaErr.Path)

	assert.Len(t, resources, 1)
	assert.Contains(t, resources, "ppt/media/image1.png")
}

func TestResolveMedia_CancelledContext(t *testing.T) {
	c := openContainer(t, pptxtest.New().Slide(1).Media("image1.png", pptxtest.PNG))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ResolveMedia(ctx, c, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
