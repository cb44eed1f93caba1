package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/scorm-packager/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintPresentation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	presentation := &types.Presentation{
		SourceName: "deck.pptx",
		SlideCount: 2,
		Slides: []types.Slide{
			{
				Index:          1,
				Title:          "Welcome",
				ContentLines:   []string{"Agenda", "Goals", "Schedule", "Questions"},
				Images:         []types.ImageResource{{Path: "ppt/media/image1.png"}},
				VisualElements: []types.VisualElement{types.VisualImage, types.VisualChart},
			},
			{Index: 2, Failed: true},
		},
	}

	p.PrintPresentation(presentation)
	output := buf.String()

	assert.Contains(t, output, "PRESENTATION OUTLINE")
	assert.Contains(t, output, "deck.pptx")
	assert.Contains(t, output, "Slides:   2 (1 failed)")
	assert.Contains(t, output, "Images:   1")
	assert.Contains(t, output, "#1  Welcome")
	assert.Contains(t, output, "... and 1 more lines")
	assert.Contains(t, output, "[image chart]")
	assert.Contains(t, output, "(untitled)")
	assert.NotContains(t, output, "Questions")
}

func TestPrintPresentation_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPresentation(nil)

	assert.Empty(t, buf.String())
}

func TestPrintScenarios(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	items := []types.ScenarioItem{
		{Question: "What is a fire door?", Answer: "A door rated to resist fire", Category: "Safety"},
		{Content: "Extinguishers are inspected monthly."},
	}

	p.PrintScenarios(items)
	output := buf.String()

	assert.Contains(t, output, "SCENARIOS")
	assert.Contains(t, output, "Normalized 2 scenarios")
	assert.Contains(t, output, "Q: What is a fire door?")
	assert.Contains(t, output, "[Safety]")
	assert.Contains(t, output, "• Extinguishers are inspected monthly.")
}

func TestPrintScenarios_ManyItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	items := make([]types.ScenarioItem, 8)
	for i := range items {
		items[i] = types.ScenarioItem{Question: fmt.Sprintf("Q%d", i), Answer: "A"}
	}

	p.PrintScenarios(items)

	assert.Contains(t, buf.String(), "... and 3 more scenarios")
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWarnings([]string{"slide 2: failed to parse slide XML", strings.Repeat("x", 80)})
	output := buf.String()

	assert.Contains(t, output, "WARNINGS")
	assert.Contains(t, output, "Found 2 warnings")
	assert.Contains(t, output, "⚠ slide 2")
	assert.Contains(t, output, "...")
}

func TestPrintWarnings_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWarnings(nil)

	assert.Contains(t, buf.String(), "NO WARNINGS")
}

func TestPrintPackage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	pkg := types.ScormPackage{
		"index.html":      []byte("<html></html>"),
		"imsmanifest.xml": []byte("<manifest/>"),
	}

	p.PrintPackage(pkg)
	output := buf.String()

	assert.Contains(t, output, "SCORM PACKAGE")
	assert.Contains(t, output, "2 files, 24 bytes")
	assert.Less(t, strings.Index(output, "imsmanifest.xml"), strings.Index(output, "index.html"))
}

func TestPrintPackage_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPackage(nil)

	assert.Empty(t, buf.String())
}
