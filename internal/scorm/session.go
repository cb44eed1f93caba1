package scorm

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/jonathan/scorm-packager/internal/types"
)

// Completion status values written to the LMS
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
)

// API is the LMS runtime object a content page talks to.
// Methods mirror the 2004 call names; a 1.2 adapter maps them onto the LMS-prefixed calls.
type API interface {
	Initialize(param string) bool
	Terminate(param string) bool
	GetValue(key string) string
	SetValue(key, value string) bool
	Commit(param string) bool
}

// APILocator finds the LMS API object, if any
type APILocator interface {
	Locate() (API, bool)
}

// Frame is one window in a browsing-context hierarchy
type Frame interface {
	// API returns the runtime object exposed by this frame under the dialect's name
	API(name string) (API, bool)
	// Parent returns the enclosing frame; false at the top
	Parent() (Frame, bool)
}

// FrameLocator searches a frame and up to MaxParentDepth of its ancestors
type FrameLocator struct {
	Start   Frame
	APIName string
}

// Locate walks the frame hierarchy and stops after MaxParentDepth parents
func (l FrameLocator) Locate() (API, bool) {
	frame := l.Start
	for depth := 0; frame != nil; depth++ {
		if api, ok := frame.API(l.APIName); ok {
			return api, true
		}
		if depth >= MaxParentDepth {
			return nil, false
		}
		parent, ok := frame.Parent()
		if !ok {
			return nil, false
		}
		frame = parent
	}
	return nil, false
}

// State is a runtime session state
type State int

// Session states
const (
	StateUninitialized State = iota
	StateInitialized
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// Progress is the bookmark saved to the LMS
type Progress struct {
	CurrentIndex int               `json:"currentIndex"`
	Responses    map[string]string `json:"responses"`
}

// ParseProgress decodes a bookmark; anything unreadable or out of range resets to the first unit
func ParseProgress(raw string, total int) Progress {
	fresh := Progress{CurrentIndex: 0, Responses: map[string]string{}}
	if raw == "" {
		return fresh
	}

	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("[SCORM] Ignoring unreadable bookmark: %v", err)
		return fresh
	}
	if p.CurrentIndex < 0 || p.CurrentIndex >= total {
		p.CurrentIndex = 0
	}
	if p.Responses == nil {
		p.Responses = map[string]string{}
	}
	return p
}

// ParseSplitProgress decodes a bookmark stored as a bare unit index plus a JSON responses object.
// An unreadable index resets to the first unit; unreadable responses are dropped.
func ParseSplitProgress(location, suspendData string, total int) Progress {
	p := Progress{CurrentIndex: 0, Responses: map[string]string{}}
	if index, err := strconv.Atoi(location); err == nil && index >= 0 && index < total {
		p.CurrentIndex = index
	} else if location != "" {
		log.Printf("[SCORM] Ignoring unreadable location %q", location)
	}
	if suspendData == "" {
		return p
	}
	var responses map[string]string
	if err := json.Unmarshal([]byte(suspendData), &responses); err != nil {
		log.Printf("[SCORM] Ignoring unreadable suspend data: %v", err)
		return p
	}
	if responses != nil {
		p.Responses = responses
	}
	return p
}

// Session is the bookmarking/completion state machine that scorm.js implements in the browser.
// Without an API every LMS call is skipped and navigation still works.
type Session struct {
	settings types.ScormSettings
	dialect  Dialect
	locator  APILocator
	api      API
	state    State
	total    int
	progress Progress
	// gated marks units that require a response before advancing under onButton
	gated     map[int]bool
	completed bool
}

// NewSession creates a session over total units. gatedUnits lists units carrying a response form.
func NewSession(settings types.ScormSettings, locator APILocator, total int, gatedUnits ...int) *Session {
	gated := make(map[int]bool, len(gatedUnits))
	for _, i := range gatedUnits {
		gated[i] = true
	}
	return &Session{
		settings: settings,
		dialect:  DialectFor(settings.Version),
		locator:  locator,
		total:    total,
		progress: Progress{Responses: map[string]string{}},
		gated:    gated,
	}
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Connected reports whether an LMS API was found and initialized
func (s *Session) Connected() bool {
	return s.api != nil && s.state == StateInitialized
}

// CurrentIndex returns the zero-based unit being shown
func (s *Session) CurrentIndex() int {
	return s.progress.CurrentIndex
}

// Completed reports whether completion has been recorded
func (s *Session) Completed() bool {
	return s.completed
}

// Progress returns a copy of the bookmark
func (s *Session) Progress() Progress {
	responses := make(map[string]string, len(s.progress.Responses))
	for k, v := range s.progress.Responses {
		responses[k] = v
	}
	return Progress{CurrentIndex: s.progress.CurrentIndex, Responses: responses}
}

// Start initializes the API, restores the bookmark and shows the bookmarked unit.
// It returns false when no API is available; the session then runs in no-op mode.
func (s *Session) Start() bool {
	connected := s.Initialize()
	s.loadProgress()
	s.show(s.progress.CurrentIndex)
	return connected
}

// Initialize performs API discovery and Initialize(""), then marks the attempt incomplete.
// Only the first call in the uninitialized state has any effect.
func (s *Session) Initialize() bool {
	if s.state != StateUninitialized {
		return s.Connected()
	}
	if s.locator == nil {
		return false
	}
	api, ok := s.locator.Locate()
	if !ok || api == nil {
		log.Printf("[SCORM] No %s found, running without LMS tracking", s.dialect.APIName)
		return false
	}
	if !api.Initialize("") {
		log.Printf("[SCORM] %s.Initialize returned false", s.dialect.APIName)
		return false
	}

	s.api = api
	s.state = StateInitialized
	s.setValue(s.dialect.StatusKey, StatusIncomplete)
	s.commit()
	return true
}

// GoTo shows a unit and saves the bookmark
func (s *Session) GoTo(index int) error {
	if index < 0 || index >= s.total {
		return &NavigationError{Index: index, Total: s.total}
	}
	s.show(index)
	s.saveProgress()
	return nil
}

// Next advances one unit when the current one allows it
func (s *Session) Next() error {
	if !s.CanAdvance() {
		return nil
	}
	return s.GoTo(s.progress.CurrentIndex + 1)
}

// Previous moves back one unit
func (s *Session) Previous() error {
	return s.GoTo(s.progress.CurrentIndex - 1)
}

// SubmitResponse records a response for the current unit and saves the bookmark
func (s *Session) SubmitResponse(value string) {
	s.progress.Responses[strconv.Itoa(s.progress.CurrentIndex)] = value
	s.saveProgress()
}

// CanAdvance reports whether the next control is enabled for the current unit.
// Under onButton a gated unit needs a submitted response first.
func (s *Session) CanAdvance() bool {
	index := s.progress.CurrentIndex
	if s.settings.CompletionCriteria != types.CompletionOnButton || !s.gated[index] {
		return true
	}
	_, answered := s.progress.Responses[strconv.Itoa(index)]
	return answered
}

// Complete is the explicit completion action. It is refused while the current unit still
// awaits a response.
func (s *Session) Complete() bool {
	if !s.CanAdvance() {
		return false
	}
	s.markCompleted()
	return true
}

// Terminate ends the attempt; Terminate("") reaches the LMS at most once
func (s *Session) Terminate() bool {
	if s.state != StateInitialized {
		return false
	}
	s.commit()
	s.api.Terminate("")
	s.state = StateTerminated
	return true
}

func (s *Session) show(index int) {
	if index < 0 || index >= s.total {
		index = 0
	}
	s.progress.CurrentIndex = index
	if s.settings.CompletionCriteria == types.CompletionOnLastItem && s.total > 0 && index == s.total-1 {
		s.markCompleted()
	}
}

func (s *Session) markCompleted() {
	if s.completed {
		return
	}
	s.completed = true
	s.setValue(s.dialect.StatusKey, StatusCompleted)
	s.commit()
}

func (s *Session) saveProgress() {
	if s.dialect.SuspendKey == "" {
		data, err := json.Marshal(s.progress)
		if err != nil {
			return
		}
		if s.setValue(s.dialect.LocationKey, string(data)) {
			s.commit()
		}
		return
	}

	responses, err := json.Marshal(s.progress.Responses)
	if err != nil {
		return
	}
	saved := s.setValue(s.dialect.LocationKey, strconv.Itoa(s.progress.CurrentIndex))
	if s.setValue(s.dialect.SuspendKey, string(responses)) {
		saved = true
	}
	if saved {
		s.commit()
	}
}

func (s *Session) loadProgress() {
	if !s.Connected() {
		return
	}
	location := s.api.GetValue(s.dialect.LocationKey)
	if s.dialect.SuspendKey == "" {
		s.progress = ParseProgress(location, s.total)
		return
	}
	s.progress = ParseSplitProgress(location, s.api.GetValue(s.dialect.SuspendKey), s.total)
}

func (s *Session) setValue(key, value string) bool {
	if !s.Connected() {
		return false
	}
	return s.api.SetValue(key, value)
}

func (s *Session) commit() bool {
	if !s.Connected() {
		return false
	}
	return s.api.Commit("")
}
