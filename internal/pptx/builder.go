package pptx

import (
	"github.com/jonathan/scorm-packager/internal/types"
)

// Build merges extracted slides with their relationship maps and the resolved media into the
// final presentation. It performs no I/O: output slide count equals len(raw) and indexes are
// exactly 1..N. Image ids that do not resolve stay in ImageIDs but are left out of Images.
func Build(sourceName string, raw []RawSlide, rels map[int]RelationshipMap, media map[string]types.ImageResource) *types.Presentation {
	slides := make([]types.Slide, 0, len(raw))

	for i, r := range raw {
		relMap := rels[r.Number]

		images := []types.ImageResource{}
		for _, id := range r.ImageIDs {
			target, ok := relMap.Lookup(id)
			if !ok {
				continue
			}
			resource, ok := media[target]
			if !ok {
				continue
			}
			resource.ID = id
			images = append(images, resource)
		}

		slides = append(slides, types.Slide{
			Index:          i + 1,
			SourceNumber:   r.Number,
			Title:          r.Title,
			ContentLines:   append([]string{}, r.ContentLines...),
			ImageIDs:       append([]string{}, r.ImageIDs...),
			Images:         images,
			VisualElements: append([]types.VisualElement{}, r.VisualElements...),
			Failed:         r.Failed,
		})
	}

	return &types.Presentation{
		SourceName: sourceName,
		SlideCount: len(slides),
		Slides:     slides,
	}
}
