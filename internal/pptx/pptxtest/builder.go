// Package pptxtest builds in-memory OOXML presentations for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
</Types>`

	presentation = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:sldIdLst/></p:presentation>`

	slideHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`

	slideFooter = `</p:spTree></p:cSld></p:sld>`

	relsHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`

	imageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Rel is a relationship entry in a slide .rels part
type Rel struct {
	ID     string
	Target string
	Type   string
}

type part struct {
	name string
	data []byte
}

// Builder assembles a presentation container part by part
type Builder struct {
	parts []part
}

// New returns a builder with the required content types and presentation parts
func New() *Builder {
	b := &Builder{}
	b.Part("[Content_Types].xml", contentTypes)
	b.Part("ppt/presentation.xml", presentation)
	return b
}

// Empty returns a builder without any parts
func Empty() *Builder {
	return &Builder{}
}

// Part adds or replaces a text part
func (b *Builder) Part(name, content string) *Builder {
	return b.Binary(name, []byte(content))
}

// Binary adds or replaces a binary part
func (b *Builder) Binary(name string, data []byte) *Builder {
	for i := range b.parts {
		if b.parts[i].name == name {
			b.parts[i].data = data
			return b
		}
	}
	b.parts = append(b.parts, part{name: name, data: data})
	return b
}

// Remove drops a part
func (b *Builder) Remove(name string) *Builder {
	for i := range b.parts {
		if b.parts[i].name == name {
			b.parts = append(b.parts[:i], b.parts[i+1:]...)
			break
		}
	}
	return b
}

// Slide adds ppt/slides/slideN.xml wrapping the given shapes in a shape tree
func (b *Builder) Slide(number int, shapes ...string) *Builder {
	return b.Part(fmt.Sprintf("ppt/slides/slide%d.xml", number), SlideXML(shapes...))
}

// RawSlide adds ppt/slides/slideN.xml with verbatim content
func (b *Builder) RawSlide(number int, content string) *Builder {
	return b.Part(fmt.Sprintf("ppt/slides/slide%d.xml", number), content)
}

// Rels adds ppt/slides/_rels/slideN.xml.rels
func (b *Builder) Rels(number int, rels ...Rel) *Builder {
	var sb strings.Builder
	sb.WriteString(relsHeader)
	for _, r := range rels {
		relType := r.Type
		if relType == "" {
			relType = imageRelType
		}
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.ID, relType, r.Target)
	}
	sb.WriteString(`</Relationships>`)
	return b.Part(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", number), sb.String())
}

// Media adds ppt/media/<name>
func (b *Builder) Media(name string, data []byte) *Builder {
	return b.Binary("ppt/media/"+name, data)
}

// Bytes writes the container; a padding part keeps it above the minimum container size
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	write := func(name string, data []byte) error {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	}

	for _, p := range b.parts {
		if err := write(p.name, p.data); err != nil {
			return nil, err
		}
	}
	if err := write("docProps/custom.xml", []byte("<Properties>"+strings.Repeat(" ", 1024)+"</Properties>")); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustBytes is Bytes for tests that cannot fail
func (b *Builder) MustBytes() []byte {
	data, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return data
}

// SlideXML wraps shapes in a complete slide document
func SlideXML(shapes ...string) string {
	return slideHeader + strings.Join(shapes, "") + slideFooter
}

// TextShape returns a text box with one drawing paragraph per argument.
// Within a paragraph, "|" splits the text into separate runs.
func TextShape(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Text"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/>`)
	for _, para := range paragraphs {
		sb.WriteString(`<a:p>`)
		for _, run := range strings.Split(para, "|") {
			fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r>`, run)
		}
		sb.WriteString(`</a:p>`)
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	return sb.String()
}

// PictureShape returns a picture shape whose blip embeds relID
func PictureShape(relID string) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="3" name="Picture"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`, relID)
}

// ChartFrame returns a graphic frame referencing a chart part
func ChartFrame(relID string) string {
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="4" name="Chart"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr><p:xfrm/><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart"><c:chart r:id="%s"/></a:graphicData></a:graphic></p:graphicFrame>`, relID)
}

// TableFrame returns a graphic frame with a table, one row per slice
func TableFrame(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="5" name="Table"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr><p:xfrm/><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblGrid/>`)
	for _, row := range rows {
		sb.WriteString(`<a:tr h="0">`)
		for _, cell := range row {
			fmt.Fprintf(&sb, `<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></a:txBody></a:tc>`, cell)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return sb.String()
}

// GroupShape wraps shapes in a group
func GroupShape(shapes ...string) string {
	return `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="6" name="Group"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` + strings.Join(shapes, "") + `</p:grpSp>`
}

// PNG is a tiny payload standing in for image bytes
var PNG = []byte("\x89PNG\r\n\x1a\nfake-image-data")
