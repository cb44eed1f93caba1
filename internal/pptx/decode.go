package pptx

import (
	"context"
	"log"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/types"
)

// Options controls a decode operation
type Options struct {
	// MediaWorkers bounds concurrent media decompression (0 uses DefaultMediaWorkers)
	MediaWorkers int
}

// Decode turns a presentation buffer into the ordered slide model.
// Container-level problems abort with a single error; slide, relationship and media problems
// are isolated and reported in Presentation.Warnings.
func Decode(ctx context.Context, data []byte, sourceName string, opts Options) (*types.Presentation, error) {
	c, err := container.Open(data)
	if err != nil {
		return nil, err
	}
	if err := c.RequireParts(container.ContentTypesPart, container.PresentationPart); err != nil {
		return nil, err
	}

	raw, slideErrs := ExtractSlides(c)
	if len(raw) == 0 {
		return nil, &EmptyResultError{SourceName: sourceName}
	}

	var warnings []error
	warnings = append(warnings, slideErrs...)

	rels := make(map[int]RelationshipMap, len(raw))
	for _, r := range raw {
		relMap, err := ResolveRelationships(c, r.Number)
		if err != nil {
			log.Printf("[PPTX] %v", err)
			warnings = append(warnings, err)
		}
		rels[r.Number] = relMap
	}

	media, mediaErrs, err := ResolveMedia(ctx, c, opts.MediaWorkers)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, mediaErrs...)

	presentation := Build(sourceName, raw, rels, media)
	for _, w := range warnings {
		presentation.Warnings = append(presentation.Warnings, w.Error())
	}

	log.Printf("[PPTX] Decoded %s: %d slides, %d images, %d warnings",
		sourceName, presentation.SlideCount, presentation.ImageCount(), len(presentation.Warnings))

	return presentation, nil
}
