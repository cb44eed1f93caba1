// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/scorm-packager/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// PrintPresentation outputs a slide-by-slide outline of the decoded presentation.
func (p *Printer) PrintPresentation(presentation *types.Presentation) {
	if presentation == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", presentation.SourceName))
	sb.WriteString(fmt.Sprintf("Slides:   %d (%d failed)\n", presentation.SlideCount, presentation.FailedCount()))
	sb.WriteString(fmt.Sprintf("Images:   %d\n", presentation.ImageCount()))

	for _, slide := range presentation.Slides {
		sb.WriteString("\n")
		title := slide.Title
		if title == "" {
			title = "(untitled)"
		}
		marker := ""
		if slide.Failed {
			marker = " ⚠"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s%s\n", slide.Index, truncate(title, 44), marker))

		count := min(len(slide.ContentLines), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("    %s\n", truncate(slide.ContentLines[i], 48)))
		}
		if len(slide.ContentLines) > 3 {
			sb.WriteString(fmt.Sprintf("    ... and %d more lines\n", len(slide.ContentLines)-3))
		}

		if len(slide.VisualElements) > 0 {
			tags := make([]string, len(slide.VisualElements))
			for i, v := range slide.VisualElements {
				tags[i] = string(v)
			}
			sb.WriteString(fmt.Sprintf("    [%s]\n", strings.Join(tags, " ")))
		}
	}

	p.printBox("PRESENTATION OUTLINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScenarios outputs the first few normalized scenarios.
func (p *Printer) PrintScenarios(items []types.ScenarioItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Normalized %d scenarios:\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		if item.IsKnowledge() {
			sb.WriteString(fmt.Sprintf("• %s\n", truncate(item.Content, 50)))
		} else {
			sb.WriteString(fmt.Sprintf("• Q: %s\n", truncate(item.Question, 47)))
			sb.WriteString(fmt.Sprintf("  A: %s\n", truncate(item.Answer, 47)))
		}
		if item.Category != "" {
			sb.WriteString(fmt.Sprintf("  [%s]\n", item.Category))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more scenarios", len(items)-maxItemsToShow))
	}

	p.printBox("SCENARIOS", sb.String())
}

// PrintWarnings outputs the non-fatal content problems collected while decoding.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO WARNINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d warnings:\n\n", len(warnings)))

	for i, w := range warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", truncate(w, 50)))
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("WARNINGS", sb.String())
}

// PrintPackage outputs the file listing of an assembled SCORM package.
func (p *Printer) PrintPackage(pkg types.ScormPackage) {
	if len(pkg) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d files, %d bytes\n\n", len(pkg), pkg.TotalSize()))

	for _, path := range pkg.Paths() {
		sb.WriteString(fmt.Sprintf("%-40s %8d\n", truncate(path, 40), len(pkg[path])))
	}

	p.printBox("SCORM PACKAGE", strings.TrimSuffix(sb.String(), "\n"))
}
