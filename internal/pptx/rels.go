package pptx

import (
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/scorm-packager/internal/container"
)

const (
	mediaRelPrefix = "../media/"
	slidesDir      = "ppt/slides/"
	mediaDir       = "ppt/media/"
)

// RelationshipMap maps relationship ids of one slide to normalized part paths.
// It is created once per slide and never mutated afterwards.
type RelationshipMap map[string]string

// Lookup returns the target path for a relationship id
func (m RelationshipMap) Lookup(id string) (string, bool) {
	target, ok := m[id]
	return target, ok
}

type relationshipsPart struct {
	Relationships []relationshipEntry `xml:"Relationship"`
}

type relationshipEntry struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// RelsPath returns the relationships part path for a slide number
func RelsPath(slideNumber int) string {
	return fmt.Sprintf("%s_rels/slide%d.xml.rels", slidesDir, slideNumber)
}

// NormalizeTarget rewrites a relationship target relative to a slide into a container path.
// Rules, in order: "../media/x" becomes "ppt/media/x"; targets outside "ppt/" are prefixed
// with "ppt/slides/"; anything else is left unchanged.
func NormalizeTarget(target string) string {
	target = strings.TrimPrefix(target, "/")
	switch {
	case strings.HasPrefix(target, mediaRelPrefix):
		return mediaDir + strings.TrimPrefix(target, mediaRelPrefix)
	case !strings.HasPrefix(target, "ppt/"):
		return slidesDir + target
	default:
		return target
	}
}

// ResolveRelationships reads the relationships part of a slide.
// An absent part yields an empty map; a part that does not parse yields an empty map and a
// RelationshipParseError the caller may record as a warning.
func ResolveRelationships(c *container.Container, slideNumber int) (RelationshipMap, error) {
	path := RelsPath(slideNumber)
	result := RelationshipMap{}

	data, ok := c.Entry(path)
	if !ok {
		return result, nil
	}

	var part relationshipsPart
	if err := newDecoder(data).Decode(&part); err != nil {
		return result, &RelationshipParseError{SlideNumber: slideNumber, Path: path, Cause: err}
	}

	for i, rel := range part.Relationships {
		if rel.ID == "" || rel.Target == "" {
			log.Printf("[PPTX] Skipping relationship #%d in %s: missing Id or Target", i+1, path)
			continue
		}
		if strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		if _, dup := result[rel.ID]; dup {
			log.Printf("[PPTX] Skipping duplicate relationship %s in %s", rel.ID, path)
			continue
		}
		result[rel.ID] = NormalizeTarget(rel.Target)
	}

	return result, nil
}
