package pptx

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/types"
)

const (
	slidePartPrefix = "ppt/slides/slide"

	placeholderTitleFormat = "Slide %d (Content Error)"
	placeholderLine        = "Content could not be extracted from this slide."
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// RawSlide is the text-level content of one slide before images are resolved
type RawSlide struct {
	Index          int
	Number         int
	Path           string
	Title          string
	ContentLines   []string
	ImageIDs       []string
	VisualElements []types.VisualElement
	Failed         bool
}

// SlidePart is a slide part path with the number embedded in its name
type SlidePart struct {
	Number int
	Path   string
}

// SlideParts lists slide parts ordered by their embedded number (slide2 before slide10)
func SlideParts(c *container.Container) []SlidePart {
	var parts []SlidePart
	for _, path := range c.PathsWithPrefix(slidePartPrefix) {
		if !strings.HasSuffix(path, ".xml") {
			continue
		}
		m := slidePartPattern.FindStringSubmatch(path)
		if m == nil {
			log.Printf("[PPTX] Ignoring slide-like part without a number: %s", path)
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			log.Printf("[PPTX] Ignoring slide part with unparseable number: %s", path)
			continue
		}
		parts = append(parts, SlidePart{Number: number, Path: path})
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Number < parts[j].Number
	})
	return parts
}

// ExtractSlides walks every slide part in numeric order.
// A slide that fails to parse becomes a placeholder and its SlideParseError is returned
// alongside the full slide list; the batch is never aborted.
func ExtractSlides(c *container.Container) ([]RawSlide, []error) {
	parts := SlideParts(c)
	slides := make([]RawSlide, 0, len(parts))
	var errs []error

	for i, part := range parts {
		index := i + 1
		slide, err := extractSlide(c, part, index)
		if err != nil {
			log.Printf("[PPTX] Slide %d failed to parse, using placeholder: %v", index, err)
			errs = append(errs, &SlideParseError{Index: index, Path: part.Path, Cause: err})
			slide = placeholderSlide(part, index)
		}
		slides = append(slides, slide)
	}

	return slides, errs
}

func placeholderSlide(part SlidePart, index int) RawSlide {
	return RawSlide{
		Index:          index,
		Number:         part.Number,
		Path:           part.Path,
		Title:          fmt.Sprintf(placeholderTitleFormat, index),
		ContentLines:   []string{placeholderLine},
		ImageIDs:       []string{},
		VisualElements: []types.VisualElement{},
		Failed:         true,
	}
}

func extractSlide(c *container.Container, part SlidePart, index int) (RawSlide, error) {
	data, err := c.Read(part.Path)
	if err != nil {
		return RawSlide{}, err
	}
	return ParseSlide(data, part.Number, part.Path, index)
}

// ParseSlide extracts text lines, image relationship ids and visual element flags from slide XML
func ParseSlide(data []byte, number int, path string, index int) (RawSlide, error) {
	root, err := parseTree(data)
	if err != nil {
		return RawSlide{}, err
	}

	lines := textLines(root)
	title := fmt.Sprintf("Slide %d", index)
	if len(lines) > 0 {
		title = lines[0]
	}

	return RawSlide{
		Index:          index,
		Number:         number,
		Path:           path,
		Title:          title,
		ContentLines:   lines,
		ImageIDs:       imageIDs(root),
		VisualElements: visualElements(root),
	}, nil
}

// textLines returns the non-empty drawing text runs in document order
func textLines(root *node) []string {
	lines := []string{}
	root.walk(func(n *node) bool {
		if !n.isDrawing("t") {
			return true
		}
		if line := strings.TrimSpace(n.Text); line != "" {
			lines = append(lines, line)
		}
		return false
	})
	return lines
}

// imageIDs collects blip embeds and any relationship reference inside picture shapes,
// de-duplicated in first-seen order
func imageIDs(root *node) []string {
	ids := []string{}
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	root.walk(func(n *node) bool {
		switch {
		case n.Name.Local == "blip":
			if id, ok := n.relAttr("embed"); ok {
				add(id)
			}
		case n.Name.Local == "pic":
			n.walk(func(c *node) bool {
				if id, ok := c.relAttr("embed"); ok {
					add(id)
				}
				if id, ok := c.relAttr("link"); ok {
					add(id)
				}
				return true
			})
			return false
		}
		return true
	})

	return ids
}

// visualElements scans each shape of the shape tree; group shapes are scanned member by member
func visualElements(root *node) []types.VisualElement {
	elements := []types.VisualElement{}

	tree := root.first("spTree")
	if tree == nil {
		return elements
	}

	var scan func(shapes []*node)
	scan = func(shapes []*node) {
		for _, shape := range shapes {
			if shape.isPresentation("grpSp") {
				scan(shape.Children)
				continue
			}
			elements = append(elements, shapeFlags(shape)...)
		}
	}
	scan(tree.Children)

	return elements
}

// shapeFlags returns every visual tag a single shape contributes
func shapeFlags(shape *node) []types.VisualElement {
	var flags []types.VisualElement

	if shape.Name.Local == "pic" || shape.contains(func(n *node) bool {
		return n.Name.Local == "blip" || n.Name.Local == "pic"
	}) {
		flags = append(flags, types.VisualImage)
	}

	if shape.contains(isChartReference) {
		flags = append(flags, types.VisualChart)
	}

	if shape.contains(func(n *node) bool { return n.isDrawing("tbl") }) {
		flags = append(flags, types.VisualTable)
	}

	return flags
}

func isChartReference(n *node) bool {
	if n.Name.Local == "chart" {
		return true
	}
	if n.isDrawing("graphicData") {
		if uri, ok := n.attr("uri"); ok && strings.HasSuffix(uri, "/chart") {
			return true
		}
	}
	return false
}
