// Package types provides type definitions for structured data used throughout the scorm-packager system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// VisualElement tags a non-text element found in a slide shape
type VisualElement string

// Visual element tags
const (
	VisualImage VisualElement = "image"
	VisualChart VisualElement = "chart"
	VisualTable VisualElement = "table"
)

// ImageResource is an addressable image payload extracted from the presentation media folder
type ImageResource struct {
	ID       string `json:"id,omitempty"`
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the payload length in bytes
func (r ImageResource) Size() int {
	return len(r.Data)
}

// Slide represents one extracted slide.
// Index is the position in the presentation (1..N); SourceNumber is the number embedded in the
// slide part name, which can skip values when slides were deleted and re-added.
type Slide struct {
	Index          int             `json:"index"`
	SourceNumber   int             `json:"source_number"`
	Title          string          `json:"title"`
	ContentLines   []string        `json:"content_lines"`
	ImageIDs       []string        `json:"image_ids"`
	Images         []ImageResource `json:"images"`
	VisualElements []VisualElement `json:"visual_elements"`
	Failed         bool            `json:"failed,omitempty"`
}

// HasVisual reports whether the slide carries at least one element with the given tag
func (s *Slide) HasVisual(tag VisualElement) bool {
	for _, v := range s.VisualElements {
		if v == tag {
			return true
		}
	}
	return false
}

// Presentation is the ordered, immutable slide sequence built from one upload
type Presentation struct {
	SourceName string   `json:"source_name"`
	SlideCount int      `json:"slide_count"`
	Slides     []Slide  `json:"slides"`
	Warnings   []string `json:"warnings,omitempty"`
}

// ImageCount returns the number of resolved images across all slides
func (p *Presentation) ImageCount() int {
	count := 0
	for _, s := range p.Slides {
		count += len(s.Images)
	}
	return count
}

// FailedCount returns the number of placeholder slides
func (p *Presentation) FailedCount() int {
	count := 0
	for _, s := range p.Slides {
		if s.Failed {
			count++
		}
	}
	return count
}
