package pptx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/pptx/pptxtest"
)

func TestDecode(t *testing.T) {
	data := pptxtest.New().
		Slide(1, pptxtest.TextShape("Welcome", "Agenda"), pptxtest.PictureShape("rId2")).
		Rels(1,
			pptxtest.Rel{ID: "rId1", Target: "../slideLayouts/slideLayout1.xml", Type: "layout"},
			pptxtest.Rel{ID: "rId2", Target: "../media/image1.png"},
		).
		Slide(2, pptxtest.TextShape("Details"), pptxtest.ChartFrame("rId3")).
		Media("image1.png", pptxtest.PNG).
		MustBytes()

	p, err := Decode(context.Background(), data, "deck.pptx", Options{})
	require.NoError(t, err)

	require.Equal(t, 2, p.SlideCount)
	assert.Empty(t, p.Warnings)

	first := p.Slides[0]
	assert.Equal(t, "Welcome", first.Title)
	assert.Equal(t, []string{"Welcome", "Agenda"}, first.ContentLines)
	require.Len(t, first.Images, 1)
	assert.Equal(t, "ppt/media/image1.png", first.Images[0].Path)
	assert.Equal(t, pptxtest.PNG, first.Images[0].Data)

	second := p.Slides[1]
	assert.Equal(t, "Details", second.Title)
	assert.Empty(t, second.Images)
}

func TestDecode_AllSlidesFailing(t *testing.T) {
	b := pptxtest.New()
	for i := 1; i <= 3; i++ {
		b.RawSlide(i, "<p:sld><broken")
	}

	p, err := Decode(context.Background(), b.MustBytes(), "broken.pptx", Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, p.SlideCount)
	assert.Equal(t, 3, p.FailedCount())
	assert.Len(t, p.Warnings, 3)
	for i, s := range p.Slides {
		assert.Equal(t, i+1, s.Index)
	}
}

func TestDecode_MalformedRelsBecomesWarning(t *testing.T) {
	data := pptxtest.New().
		Slide(1, pptxtest.TextShape("Title"), pptxtest.PictureShape("rId2")).
		Part(RelsPath(1), "<Relationships><oops").
		Media("image1.png", pptxtest.PNG).
		MustBytes()

	p, err := Decode(context.Background(), data, "deck.pptx", Options{})
	require.NoError(t, err)

	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "relationships for slide 1")
	assert.Equal(t, []string{"rId2"}, p.Slides[0].ImageIDs)
	assert.Empty(t, p.Slides[0].Images)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("missing presentation part", func(t *testing.T) {
		data := pptxtest.New().Remove(container.PresentationPart).Slide(1).MustBytes()

		_, err := Decode(context.Background(), data, "deck.pptx", Options{})
		var missing *container.MissingPartError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, container.PresentationPart, missing.Part)
	})

	t.Run("no slides", func(t *testing.T) {
		data := pptxtest.New().MustBytes()

		_, err := Decode(context.Background(), data, "empty.pptx", Options{})
		var empty *EmptyResultError
		require.ErrorAs(t, err, &empty)
		assert.Contains(t, err.Error(), "empty.pptx")
	})

	t.Run("not a zip", func(t *testing.T) {
		data := make([]byte, 2048)
		copy(data, "%PDF-1.7")

		_, err := Decode(context.Background(), data, "deck.pptx", Options{})
		var invalid *container.InvalidFormatError
		assert.ErrorAs(t, err, &invalid)
	})
}
