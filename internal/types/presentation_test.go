//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentation_Counts(t *testing.T) {
	p := Presentation{
		Slides: []Slide{
			{Index: 1, Images: []ImageResource{{Path: "ppt/media/a.png"}, {Path: "ppt/media/b.png"}}},
			{Index: 2, Failed: true},
			{Index: 3, Images: []ImageResource{{Path: "ppt/media/c.png"}}},
		},
	}

	assert.Equal(t, 3, p.ImageCount())
	assert.Equal(t, 1, p.FailedCount())
}

func TestSlide_HasVisual(t *testing.T) {
	s := Slide{VisualElements: []VisualElement{VisualImage, VisualTable, VisualImage}}
	assert.True(t, s.HasVisual(VisualTable))
	assert.False(t, s.HasVisual(VisualChart))
}

func TestImageResource_DataNotSerialized(t *testing.T) {
	img := ImageResource{ID: "rId2", Path: "ppt/media/image1.png", MIMEType: "image/png", Data: []byte{1, 2, 3}}

	jsonBytes, err := json.Marshal(img)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), "data")
	assert.Contains(t, string(jsonBytes), `"mime_type":"image/png"`)
	assert.Equal(t, 3, img.Size())
}

func TestScenarioItem_Forms(t *testing.T) {
	assert.True(t, ScenarioItem{Content: "fact"}.IsKnowledge())
	assert.False(t, ScenarioItem{Question: "Q", Answer: "A"}.IsKnowledge())
	assert.True(t, ScenarioItem{}.IsEmpty())
}
