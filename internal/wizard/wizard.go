// Package wizard implements the anonymous four-step report submission flow.
//
// A Wizard is owned by one visitor session. Forward navigation is gated per
// step; a rejected action leaves the state untouched and reports false
// instead of returning an error. Submission is terminal.
package wizard

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// Step is a position in the wizard.
type Step int

const (
	StepChooseType Step = iota + 1
	StepAttachEvidence
	StepConfirmLocation
	StepDescribe
	StepSubmitted
)

// TotalSteps is the number of input steps before submission.
const TotalSteps = 4

// MinDescriptionLength is the minimum description length in characters.
const MinDescriptionLength = 10

// LocationPlaceholder is shown while detection is pending. It is not a location.
const LocationPlaceholder = "Detecting location..."

// ReferencePrefix prefixes every submission reference code.
const ReferencePrefix = "RPT-"

func (s Step) String() string {
	switch s {
	case StepChooseType:
		return "choose_type"
	case StepAttachEvidence:
		return "attach_evidence"
	case StepConfirmLocation:
		return "confirm_location"
	case StepDescribe:
		return "describe"
	case StepSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// LocationSource records where the current location value came from.
type LocationSource string

const (
	LocationPending  LocationSource = "pending"
	LocationDetected LocationSource = "detected"
	LocationManual   LocationSource = "manual"
)

// Timer is a scheduled task that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

func realScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configures a Wizard.
type Options struct {
	DetectionDelay   time.Duration
	DetectedLocation string
	Schedule         Scheduler
	Now              func() time.Time
}

// Submission is the finalized, ephemeral result of a completed wizard.
type Submission struct {
	ReferenceCode string       `json:"reference_code"`
	Report        types.Report `json:"report"`
	Photos        []string     `json:"photos"`
}

// Wizard is safe for concurrent use; the detection task completes on its
// own goroutine.
type Wizard struct {
	mu sync.Mutex

	opts Options

	step           Step
	issueType      types.ReportType
	photos         []string
	photoSeq       int
	location       string
	locationSource LocationSource
	description    string

	detection  Timer
	superseded bool

	submission *Submission
}

// New creates a wizard at the first step with the location placeholder set.
func New(opts Options) *Wizard {
	if opts.Schedule == nil {
		opts.Schedule = realScheduler
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Wizard{
		opts:           opts,
		step:           StepChooseType,
		location:       LocationPlaceholder,
		locationSource: LocationPending,
	}
}

// StartLocationDetection schedules the simulated detection. The result is
// dropped if a manual location was entered first or the wizard is closed.
// Calling it more than once has no further effect.
func (w *Wizard) StartLocationDetection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.detection != nil || w.superseded || w.step == StepSubmitted {
		return
	}
	w.detection = w.opts.Schedule(w.opts.DetectionDelay, w.completeDetection)
}

func (w *Wizard) completeDetection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.superseded || w.step == StepSubmitted {
		return
	}
	w.location = w.opts.DetectedLocation
	w.locationSource = LocationDetected
}

// Close cancels a pending detection task.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelDetection()
}

// cancelDetection must be called with mu held.
func (w *Wizard) cancelDetection() {
	w.superseded = true
	if w.detection != nil {
		w.detection.Stop()
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SelectType sets the issue type. Unknown types are rejected.
func (w *Wizard) SelectType(t types.ReportType) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSubmitted || !t.Valid() {
		return false
	}
	w.issueType = t
	return true
}

// AttachPhoto adds a photo placeholder and returns its opaque reference.
// Returns "" after submission.
func (w *Wizard) AttachPhoto() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSubmitted {
		return ""
	}
	w.photoSeq++
	ref := fmt.Sprintf("Photo %d", w.photoSeq)
	w.photos = append(w.photos, ref)
	return ref
}

// RemovePhoto removes the placeholder with the given reference.
func (w *Wizard) RemovePhoto(ref string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSubmitted {
		return false
	}
	for i, p := range w.photos {
		if p == ref {
			w.photos = append(w.photos[:i], w.photos[i+1:]...)
			return true
		}
	}
	return false
}

// SetLocation records a manual location. Manual entry supersedes any
// pending or completed detection.
func (w *Wizard) SetLocation(location string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSubmitted {
		return false
	}
	w.cancelDetection()
	w.location = location
	w.locationSource = LocationManual
	return true
}

// SetDescription replaces the free-text description.
func (w *Wizard) SetDescription(description string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSubmitted {
		return false
	}
	w.description = description
	return true
}

// CanProceed reports whether the current step's gate passes.
func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gate()
}

// gate must be called with mu held.
func (w *Wizard) gate() bool {
	switch w.step {
	case StepChooseType:
		return w.issueType.Valid()
	case StepAttachEvidence:
		return true
	case StepConfirmLocation:
		loc := strings.TrimSpace(w.location)
		return loc != "" && loc != LocationPlaceholder
	case StepDescribe:
		return utf8.RuneCountInString(w.description) >= MinDescriptionLength
	default:
		return false
	}
}

// Next advances one step when the current gate passes.
// It never moves past StepDescribe; use Submit from there.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step >= StepDescribe || !w.gate() {
		return false
	}
	w.step++
	return true
}

// Back retreats one step. It is a no-op on the first step and after submission.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step <= StepChooseType || w.step == StepSubmitted {
		return false
	}
	w.step--
	return true
}

// Submit finalizes the report from StepDescribe when its gate passes.
// The Submission is not written anywhere.
func (w *Wizard) Submit() (Submission, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepDescribe || !w.gate() {
		return Submission{}, false
	}

	now := w.opts.Now().UTC()
	code := ReferencePrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	photos := append([]string(nil), w.photos...)

	sub := Submission{
		ReferenceCode: code,
		Report: types.Report{
			ID:          code,
			Type:        w.issueType,
			Description: w.description,
			Status:      types.ReportPending,
			CreatedAt:   now,
			Location:    strings.TrimSpace(w.location),
			HasPhoto:    len(photos) > 0,
		},
		Photos: photos,
	}

	w.cancelDetection()
	w.step = StepSubmitted
	w.submission = &sub
	return sub, true
}

// State is a point-in-time view of the wizard.
type State struct {
	Step              int              `json:"step"`
	StepName          string           `json:"step_name"`
	TotalSteps        int              `json:"total_steps"`
	Progress          int              `json:"progress"`
	IssueType         types.ReportType `json:"issue_type,omitempty"`
	Photos            []string         `json:"photos"`
	Location          string           `json:"location"`
	LocationSource    LocationSource   `json:"location_source"`
	Description       string           `json:"description"`
	DescriptionLength int              `json:"description_length"`
	CanProceed        bool             `json:"can_proceed"`
	Submitted         bool             `json:"submitted"`
	Submission        *Submission      `json:"submission,omitempty"`
}

// Snapshot returns the current state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	shown := w.step
	if shown > TotalSteps {
		shown = TotalSteps
	}

	s := State{
		Step:              int(w.step),
		StepName:          w.step.String(),
		TotalSteps:        TotalSteps,
		Progress:          int(shown) * 100 / TotalSteps,
		IssueType:         w.issueType,
		Photos:            append([]string{}, w.photos...),
		Location:          w.location,
		LocationSource:    w.locationSource,
		Description:       w.description,
		DescriptionLength: utf8.RuneCountInString(w.description),
		CanProceed:        w.gate(),
		Submitted:         w.step == StepSubmitted,
	}
	if w.submission != nil {
		sub := *w.submission
		s.Submission = &sub
	}
	return s
}
