package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/types"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func lastItem(title string) types.ScormSettings {
	return types.ScormSettings{Version: types.Scorm12, CourseTitle: title, CompletionCriteria: types.CompletionOnLastItem}
}

func onButton(title string) types.ScormSettings {
	return types.ScormSettings{Version: types.Scorm2004, CourseTitle: title, CompletionCriteria: types.CompletionOnButton}
}

func samplePresentation() *types.Presentation {
	return &types.Presentation{
		SourceName: "deck.pptx",
		SlideCount: 3,
		Slides: []types.Slide{
			{
				Index: 1, SourceNumber: 1, Title: "Welcome",
				ContentLines: []string{"Welcome", "Today we cover exits"},
				ImageIDs:     []string{"rId2"},
				Images: []types.ImageResource{
					{ID: "rId2", Path: "ppt/media/image1.png", MIMEType: "image/png", Data: []byte("png")},
				},
				VisualElements: []types.VisualElement{types.VisualImage},
			},
			{
				Index: 2, SourceNumber: 2, Title: "Numbers",
				ContentLines:   []string{"Numbers", "Incidents per year"},
				VisualElements: []types.VisualElement{types.VisualChart, types.VisualTable, types.VisualChart},
			},
			{
				Index: 3, SourceNumber: 5, Title: "Slide 3 (Content Error)",
				ContentLines: []string{"Content could not be extracted from this slide."},
				Failed:       true,
			},
		},
	}
}

func TestRenderSlides(t *testing.T) {
	content, err := RenderSlides(samplePresentation(), lastItem("Exits & Alarms"), "")
	require.NoError(t, err)

	doc := parseHTML(t, content.IndexHTML)
	assert.Equal(t, "Exits & Alarms", doc.Find("title").Text())

	units := doc.Find("section[data-index]")
	require.Equal(t, 3, units.Length())

	first := units.Eq(0)
	assert.Equal(t, "0", first.AttrOr("data-index", ""))
	_, hidden := first.Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, "Welcome", first.Find("h2").Text())
	assert.Equal(t, 1, first.Find("p").Length(), "the title line is not repeated in the body")
	assert.Equal(t, "media/image1.png", first.Find("img").AttrOr("src", ""))

	second := units.Eq(1)
	_, hidden = second.Attr("hidden")
	assert.True(t, hidden)
	assert.Equal(t, 2, second.Find("p.visual-note").Length())

	assert.True(t, units.Eq(2).HasClass("failed"))

	assert.Equal(t, 0, doc.Find("form.response").Length(), "no response forms under onLastItem")
	assert.Equal(t, 0, doc.Find("#complete-button").Length())
	_, disabled := doc.Find("#next-button").Attr("disabled")
	assert.False(t, disabled)

	assert.Equal(t, map[string][]byte{"media/image1.png": []byte("png")}, content.Media)
	assert.Contains(t, content.Styles, ".unit")
}

func TestRenderSlides_OnButtonGatesNext(t *testing.T) {
	content, err := RenderSlides(samplePresentation(), onButton("Course"), "")
	require.NoError(t, err)

	doc := parseHTML(t, content.IndexHTML)
	assert.Equal(t, 3, doc.Find("form[data-response-for]").Length())
	_, disabled := doc.Find("#next-button").Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, 1, doc.Find("#complete-button").Length())
	assert.Equal(t, "onButton", doc.Find("body").AttrOr("data-completion", ""))
}

func TestRenderSlides_Empty(t *testing.T) {
	_, err := RenderSlides(&types.Presentation{}, lastItem("T"), "")
	var noUnits *NoUnitsError
	require.ErrorAs(t, err, &noUnits)
	assert.Equal(t, "presentation", noUnits.Source)
}

func TestRenderScenarios(t *testing.T) {
	items := []types.ScenarioItem{
		{Question: "Q1", Answer: "A1", Category: "Evacuation"},
		{Question: "Q2 <b>bold</b>", Answer: "A2"},
		{Content: "Line one\n\nLine two"},
	}

	content, err := RenderScenarios(items, lastItem("T"), "")
	require.NoError(t, err)

	doc := parseHTML(t, content.IndexHTML)
	units := doc.Find("[data-index]")
	require.Equal(t, 3, units.Length())

	assert.Equal(t, "0", units.Eq(0).AttrOr("data-index", ""))
	assert.Equal(t, "1", units.Eq(1).AttrOr("data-index", ""))
	assert.Equal(t, "Evacuation", units.Eq(0).Find(".category").Text())
	assert.Equal(t, "A1", units.Eq(0).Find("details.answer p").Text())

	assert.Equal(t, "Q2 <b>bold</b>", units.Eq(1).Find("h2").Text(), "question text is escaped")
	assert.Equal(t, 0, units.Eq(1).Find("h2 b").Length())

	knowledge := units.Eq(2)
	assert.True(t, knowledge.HasClass(KindKnowledge))
	assert.Equal(t, "Key point 3", knowledge.Find("h2").Text())
	assert.Equal(t, 2, knowledge.Find("p").Length())

	assert.Equal(t, 5, units.Eq(0).Find(`input[name="rating-0"]`).Length())
	assert.Empty(t, content.Media)
}

func TestRenderScenarios_Empty(t *testing.T) {
	_, err := RenderScenarios(nil, lastItem("T"), "")
	var noUnits *NoUnitsError
	require.ErrorAs(t, err, &noUnits)
	assert.Equal(t, "scenario set", noUnits.Source)
}

func TestParseTemplate(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		tmpl, err := parseTemplate("")
		require.NoError(t, err)
		assert.NotNil(t, tmpl)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte(`<h1>{{.CourseTitle}}</h1>{{range .Units}}<div data-index="{{.Index}}">{{.Title}}</div>{{end}}`), 0644))

		content, err := RenderScenarios([]types.ScenarioItem{{Question: "Q1"}}, lastItem("Custom"), path)
		require.NoError(t, err)
		assert.Equal(t, `<h1>Custom</h1><div data-index="0">Q1</div>`, content.IndexHTML)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := parseTemplate("/nonexistent/page.html")
		var templateErr *TemplateError
		require.ErrorAs(t, err, &templateErr)
		assert.Equal(t, "read", templateErr.Stage)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.html")
		require.NoError(t, os.WriteFile(path, []byte(`{{.Units{{}}`), 0644))

		_, err := parseTemplate(path)
		var templateErr *TemplateError
		require.ErrorAs(t, err, &templateErr)
		assert.Equal(t, "parse", templateErr.Stage)
		assert.Contains(t, err.Error(), "cannot parse "+path)
	})
}

func TestMediaPath(t *testing.T) {
	assert.Equal(t, "media/image1.png", MediaPath("ppt/media/image1.png"))
	assert.Equal(t, "media/photo.jpeg", MediaPath("photo.jpeg"))
}
