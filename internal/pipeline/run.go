// Package pipeline orchestrates decoding, rendering and packaging into SCORM zips.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/scorm-packager/internal/db"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/observability"
	"github.com/jonathan/scorm-packager/internal/packaging"
	"github.com/jonathan/scorm-packager/internal/pptx"
	"github.com/jonathan/scorm-packager/internal/rendering"
	"github.com/jonathan/scorm-packager/internal/scorm"
	"github.com/jonathan/scorm-packager/internal/types"
)

// Step names, as recorded in progress events and run_steps
const (
	StepDecode   = "decode"
	StepRender   = "render"
	StepManifest = "manifest"
	StepRuntime  = "runtime"
	StepAssemble = "assemble"
	StepZip      = "zip"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Store is the persistence used for run history. *db.DB implements it.
type Store interface {
	CreateRun(ctx context.Context, input db.RunInput) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, itemCount int, errorMsg *string) error
	StartRunStep(ctx context.Context, runID uuid.UUID, step string) error
	FinishRunStep(ctx context.Context, runID uuid.UUID, step string, status string, errorMsg *string) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, name string, content any) error
	SaveWarnings(ctx context.Context, runID uuid.UUID, warnings []string) error
	SavePackage(ctx context.Context, runID uuid.UUID, fileCount int, zip []byte) error
}

// Options holds configuration for one packaging run
type Options struct {
	Settings     types.ScormSettings
	TemplatePath string
	MediaWorkers int
	Verbose      bool
	// Out receives step lines and verbose summaries; nil discards them
	Out        io.Writer
	Store      Store
	OnProgress ProgressCallback
}

// Result is the outcome of a packaging run
type Result struct {
	RunID        uuid.UUID            `json:"run_id"`
	Package      types.ScormPackage   `json:"-"`
	Zip          []byte               `json:"-"`
	Warnings     []string             `json:"warnings"`
	Presentation *types.Presentation  `json:"presentation,omitempty"`
	Scenarios    []types.ScenarioItem `json:"scenarios,omitempty"`
	Metadata     *ingestion.Metadata  `json:"metadata,omitempty"`
	Settings     types.ScormSettings  `json:"settings"`
}

// run carries the per-invocation state shared by the step helpers
type run struct {
	ctx     context.Context
	opts    Options
	out     io.Writer
	printer *observability.Printer
	id      uuid.UUID
	total   int
	current int
}

func newRun(ctx context.Context, opts Options, total int) *run {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &run{
		ctx:     ctx,
		opts:    opts,
		out:     out,
		printer: observability.NewPrinter(out),
		total:   total,
	}
}

// start creates the run record when a store is configured. Persistence failures are logged, not fatal.
func (r *run) start(input db.RunInput) {
	if r.opts.Store == nil {
		return
	}
	id, err := r.opts.Store.CreateRun(r.ctx, input)
	if err != nil {
		log.Printf("[PIPELINE] Warning: failed to create run record: %v", err)
		return
	}
	r.id = id
	if r.opts.Verbose {
		_, _ = fmt.Fprintf(r.out, "[VERBOSE] Created run: %s\n", id)
	}
}

func (r *run) persisting() bool {
	return r.opts.Store != nil && r.id != uuid.Nil
}

// step prints the step line, records the step and runs fn
func (r *run) step(name, message string, fn func() error) error {
	r.current++
	_, _ = fmt.Fprintf(r.out, "Step %d/%d: %s...\n", r.current, r.total, message)

	if r.persisting() {
		if err := r.opts.Store.StartRunStep(r.ctx, r.id, name); err != nil {
			log.Printf("[PIPELINE] Warning: %v", err)
		}
	}

	err := fn()

	if r.persisting() {
		status := db.StepStatusCompleted
		var msg *string
		if err != nil {
			status = db.StepStatusFailed
			text := err.Error()
			msg = &text
		}
		if ferr := r.opts.Store.FinishRunStep(r.ctx, r.id, name, status, msg); ferr != nil {
			log.Printf("[PIPELINE] Warning: %v", ferr)
		}
	}
	return err
}

func (r *run) emit(step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{Step: step, Message: message, Content: content}
	if r.id != uuid.Nil {
		event.RunID = r.id.String()
	}
	r.opts.OnProgress(event)
}

func (r *run) saveArtifact(name string, content any) {
	if !r.persisting() {
		return
	}
	if err := r.opts.Store.SaveArtifact(r.ctx, r.id, name, content); err != nil {
		log.Printf("[PIPELINE] Warning: failed to save %s: %v", name, err)
	}
}

// fail marks the run failed and returns err unchanged
func (r *run) fail(err error) error {
	if r.persisting() {
		msg := err.Error()
		if cerr := r.opts.Store.CompleteRun(r.ctx, r.id, db.RunStatusFailed, 0, &msg); cerr != nil {
			log.Printf("[PIPELINE] Warning: %v", cerr)
		}
	}
	return err
}

// finish writes the zip, persists it and marks the run completed
func (r *run) finish(result *Result, itemCount int) error {
	result.RunID = r.id

	if r.persisting() {
		if err := r.opts.Store.SaveWarnings(r.ctx, r.id, result.Warnings); err != nil {
			log.Printf("[PIPELINE] Warning: %v", err)
		}
		if err := r.opts.Store.SavePackage(r.ctx, r.id, len(result.Package), result.Zip); err != nil {
			log.Printf("[PIPELINE] Warning: %v", err)
		}
		if err := r.opts.Store.CompleteRun(r.ctx, r.id, db.RunStatusCompleted, itemCount, nil); err != nil {
			log.Printf("[PIPELINE] Warning: %v", err)
		}
	}

	if r.opts.Verbose {
		r.printer.PrintWarnings(result.Warnings)
		r.printer.PrintPackage(result.Package)
	}
	r.emit(StepZip, fmt.Sprintf("Packaged %d files (%d bytes)", len(result.Package), len(result.Zip)), nil)
	return nil
}

func runInput(kind string, meta *ingestion.Metadata, settings types.ScormSettings) db.RunInput {
	input := db.RunInput{
		Kind:         kind,
		CourseTitle:  settings.CourseTitle,
		ScormVersion: string(settings.Version),
		Completion:   string(settings.CompletionCriteria),
	}
	if meta != nil {
		input.SourceName = meta.Filename
		input.SourceHash = meta.Hash
	}
	return input
}

// PackageSlides decodes a presentation buffer and packages one unit per slide.
func PackageSlides(ctx context.Context, data []byte, meta *ingestion.Metadata, opts Options) (*Result, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SCORM settings: %w", err)
	}

	sourceName := "presentation.pptx"
	if meta != nil && meta.Filename != "" {
		sourceName = meta.Filename
	}

	r := newRun(ctx, opts, 6)
	r.start(runInput(db.KindSlides, meta, opts.Settings))
	r.saveArtifact(db.ArtifactMetadata, meta)

	var presentation *types.Presentation
	err := r.step(StepDecode, "Decoding presentation "+sourceName, func() error {
		var err error
		presentation, err = pptx.Decode(ctx, data, sourceName, pptx.Options{MediaWorkers: opts.MediaWorkers})
		return err
	})
	if err != nil {
		return nil, r.fail(err)
	}
	if opts.Verbose {
		r.printer.PrintPresentation(presentation)
	}
	r.saveArtifact(db.ArtifactPresentation, presentation)
	r.emit(StepDecode, fmt.Sprintf("Decoded %d slides with %d images", presentation.SlideCount, presentation.ImageCount()), nil)

	var content *rendering.Content
	err = r.step(StepRender, "Rendering course page", func() error {
		var err error
		content, err = rendering.RenderSlides(presentation, opts.Settings, opts.TemplatePath)
		return err
	})
	if err != nil {
		return nil, r.fail(err)
	}

	result := &Result{
		Presentation: presentation,
		Metadata:     meta,
		Settings:     opts.Settings,
		Warnings:     append([]string{}, presentation.Warnings...),
	}
	if err := r.packageContent(content, result); err != nil {
		return nil, r.fail(err)
	}
	return result, r.finish(result, presentation.SlideCount)
}

// PackageScenarios packages already-normalized scenario items, one unit each.
func PackageScenarios(ctx context.Context, items []types.ScenarioItem, meta *ingestion.Metadata, opts Options) (*Result, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SCORM settings: %w", err)
	}

	r := newRun(ctx, opts, 5)
	r.start(runInput(db.KindScenarios, meta, opts.Settings))
	r.saveArtifact(db.ArtifactMetadata, meta)
	r.saveArtifact(db.ArtifactScenarios, items)
	if opts.Verbose {
		r.printer.PrintScenarios(items)
	}

	var content *rendering.Content
	err := r.step(StepRender, fmt.Sprintf("Rendering %d scenarios", len(items)), func() error {
		var err error
		content, err = rendering.RenderScenarios(items, opts.Settings, opts.TemplatePath)
		return err
	})
	if err != nil {
		return nil, r.fail(err)
	}

	result := &Result{
		Scenarios: items,
		Metadata:  meta,
		Settings:  opts.Settings,
		Warnings:  []string{},
	}
	if err := r.packageContent(content, result); err != nil {
		return nil, r.fail(err)
	}
	return result, r.finish(result, len(items))
}

// packageContent runs the manifest, runtime, assemble and zip steps
func (r *run) packageContent(content *rendering.Content, result *Result) error {
	settings := r.opts.Settings

	var manifest string
	err := r.step(StepManifest, "Generating SCORM "+string(settings.Version)+" manifest", func() error {
		manifestSettings := settings
		manifestSettings.CourseTitle = rendering.EscapeXML(settings.CourseTitle)
		var err error
		manifest, err = scorm.GenerateManifest(manifestSettings)
		return err
	})
	if err != nil {
		return err
	}

	var runtime string
	err = r.step(StepRuntime, "Generating runtime script", func() error {
		var err error
		runtime, err = scorm.GenerateRuntime(settings)
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StepAssemble, "Assembling package", func() error {
		media, err := packaging.SelectMedia(content.IndexHTML, content.Media)
		if err != nil {
			return fmt.Errorf("failed to inspect course page: %w", err)
		}
		result.Package, err = packaging.Assemble(manifest, runtime, content.Styles, content.IndexHTML, media)
		return err
	})
	if err != nil {
		return err
	}

	return r.step(StepZip, "Writing zip archive", func() error {
		var err error
		result.Zip, err = packaging.ZipBytes(result.Package)
		return err
	})
}
