package packaging

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReferencedMedia lists the distinct local img src values of a course page, in document order.
// Remote and data URLs are skipped.
func ReferencedMedia(indexHTML string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexHTML))
	if err != nil {
		return nil, err
	}

	var refs []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || seen[src] {
			return
		}
		u, err := url.Parse(src)
		if err != nil || u.Scheme != "" || u.Host != "" {
			return
		}
		seen[src] = true
		refs = append(refs, u.Path)
	})

	return refs, nil
}

// SelectMedia keeps only the media files the course page references
func SelectMedia(indexHTML string, media map[string][]byte) (map[string][]byte, error) {
	refs, err := ReferencedMedia(indexHTML)
	if err != nil {
		return nil, err
	}

	selected := make(map[string][]byte, len(refs))
	for _, ref := range refs {
		data, ok := media[ref]
		if !ok {
			log.Printf("[PACKAGE] Course page references %s but no such media was extracted", ref)
			continue
		}
		selected[ref] = data
	}

	if dropped := len(media) - len(selected); dropped > 0 {
		log.Printf("[PACKAGE] Leaving out %d unreferenced media file(s)", dropped)
	}
	return selected, nil
}
