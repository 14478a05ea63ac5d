package wizard

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// fakeTimer captures a scheduled callback so tests decide when it fires.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	delay   time.Duration
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	wasActive := !f.stopped
	f.stopped = true
	return wasActive
}

// fire runs the callback even when stopped, simulating a timer that had
// already started executing when Stop was called.
func (f *fakeTimer) fire() {
	f.fn()
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) schedule(d time.Duration, fn func()) Timer {
	t := &fakeTimer{fn: fn, delay: d}
	s.timers = append(s.timers, t)
	return t
}

var fixedNow = time.Date(2024, 11, 30, 10, 0, 0, 0, time.UTC)

func newTestWizard() (*Wizard, *fakeScheduler) {
	s := &fakeScheduler{}
	w := New(Options{
		DetectionDelay:   1500 * time.Millisecond,
		DetectedLocation: "Novaliches, Quezon City (Auto-detected)",
		Schedule:         s.schedule,
		Now:              func() time.Time { return fixedNow },
	})
	return w, s
}

// advanceTo drives a fresh wizard to the given step with valid input.
func advanceTo(t *testing.T, w *Wizard, step Step) {
	t.Helper()
	w.SelectType(types.ReportSafety)
	w.SetLocation("Mango Avenue, Cebu City")
	for w.Step() < step {
		if !w.Next() {
			t.Fatalf("Next() rejected at %s", w.Step())
		}
	}
}

func TestWizard_StartsAtStepOne(t *testing.T) {
	w, _ := newTestWizard()

	if w.Step() != StepChooseType {
		t.Errorf("Step() = %s, want choose_type", w.Step())
	}
	st := w.Snapshot()
	if st.Location != LocationPlaceholder || st.LocationSource != LocationPending {
		t.Errorf("Location = %q (%s), want placeholder (pending)", st.Location, st.LocationSource)
	}
	if st.Progress != 25 {
		t.Errorf("Progress = %d, want 25", st.Progress)
	}
}

func TestWizard_StepOneGate(t *testing.T) {
	w, _ := newTestWizard()

	// Given: No type selected
	// When: Advancing
	// Then: Rejected without changing step
	if w.Next() {
		t.Fatal("Next() without issue type = true, want false")
	}
	if w.Step() != StepChooseType {
		t.Fatalf("Step() = %s, want choose_type", w.Step())
	}

	// When: Selecting safety then advancing
	if !w.SelectType(types.ReportSafety) {
		t.Fatal("SelectType(safety) = false")
	}
	if !w.Next() {
		t.Fatal("Next() after selecting type = false, want true")
	}
	if w.Step() != StepAttachEvidence {
		t.Errorf("Step() = %s, want attach_evidence", w.Step())
	}
}

func TestWizard_SelectTypeRejectsUnknown(t *testing.T) {
	w, _ := newTestWizard()

	if w.SelectType("vandalism") {
		t.Error("SelectType(vandalism) = true, want false")
	}
	if w.CanProceed() {
		t.Error("CanProceed() = true after invalid type")
	}
}

func TestWizard_StepTwoAlwaysPasses(t *testing.T) {
	w, _ := newTestWizard()
	w.SelectType(types.ReportDelay)
	w.Next()

	if !w.CanProceed() {
		t.Error("CanProceed() at attach_evidence with no photos = false, want true")
	}
}

func TestWizard_Photos(t *testing.T) {
	w, _ := newTestWizard()

	first := w.AttachPhoto()
	second := w.AttachPhoto()
	if first != "Photo 1" || second != "Photo 2" {
		t.Fatalf("refs = %q, %q, want Photo 1, Photo 2", first, second)
	}

	if !w.RemovePhoto(first) {
		t.Fatal("RemovePhoto(Photo 1) = false")
	}
	if w.RemovePhoto(first) {
		t.Error("RemovePhoto twice = true, want false")
	}

	// References stay unique after removal
	if third := w.AttachPhoto(); third != "Photo 3" {
		t.Errorf("third ref = %q, want Photo 3", third)
	}
	if got := w.Snapshot().Photos; len(got) != 2 || got[0] != "Photo 2" || got[1] != "Photo 3" {
		t.Errorf("Photos = %v, want [Photo 2 Photo 3]", got)
	}
}

func TestWizard_StepThreeGate_PlaceholderIsNotALocation(t *testing.T) {
	w, _ := newTestWizard()
	w.SelectType(types.ReportQuality)
	w.Next()
	w.Next()

	if w.Step() != StepConfirmLocation {
		t.Fatalf("Step() = %s, want confirm_location", w.Step())
	}
	if w.Next() {
		t.Error("Next() while detection pending = true, want false")
	}
}

func TestWizard_LocationDetection(t *testing.T) {
	w, s := newTestWizard()
	w.StartLocationDetection()
	w.StartLocationDetection()

	if len(s.timers) != 1 {
		t.Fatalf("scheduled %d timers, want 1", len(s.timers))
	}
	if s.timers[0].delay != 1500*time.Millisecond {
		t.Errorf("delay = %v, want 1.5s", s.timers[0].delay)
	}

	// When: The detection completes
	s.timers[0].fire()

	// Then: The detected value is used and the gate passes at step three
	st := w.Snapshot()
	if st.Location != "Novaliches, Quezon City (Auto-detected)" || st.LocationSource != LocationDetected {
		t.Errorf("Location = %q (%s), want detected value", st.Location, st.LocationSource)
	}
	w.SelectType(types.ReportDelay)
	w.Next()
	w.Next()
	if !w.Next() {
		t.Error("Next() at confirm_location after detection = false, want true")
	}
}

func TestWizard_ManualLocationWinsOverDetection(t *testing.T) {
	w, s := newTestWizard()
	w.StartLocationDetection()

	// Given: The user types a location before detection completes
	w.SetLocation("Colon Street, Cebu City")

	if !s.timers[0].stopped {
		t.Error("detection timer not stopped after manual entry")
	}

	// When: The timer callback runs anyway
	s.timers[0].fire()

	// Then: The manual entry is kept
	st := w.Snapshot()
	if st.Location != "Colon Street, Cebu City" || st.LocationSource != LocationManual {
		t.Errorf("Location = %q (%s), want manual entry", st.Location, st.LocationSource)
	}
}

func TestWizard_ManualEntryOverridesDetectedValue(t *testing.T) {
	w, s := newTestWizard()
	w.StartLocationDetection()
	s.timers[0].fire()

	w.SetLocation("Osmeña Boulevard")

	if got := w.Snapshot().Location; got != "Osmeña Boulevard" {
		t.Errorf("Location = %q, want manual entry", got)
	}
}

func TestWizard_ManualEntryBeforeStartSkipsDetection(t *testing.T) {
	w, s := newTestWizard()
	w.SetLocation("Iloilo City")
	w.StartLocationDetection()

	if len(s.timers) != 0 {
		t.Errorf("scheduled %d timers after manual entry, want 0", len(s.timers))
	}
}

func TestWizard_EmptyManualLocationFailsGate(t *testing.T) {
	w, _ := newTestWizard()
	advanceTo(t, w, StepConfirmLocation)

	w.SetLocation("   ")
	if w.CanProceed() {
		t.Error("CanProceed() with blank location = true, want false")
	}
}

func TestWizard_StepFourGate_DescriptionLength(t *testing.T) {
	w, _ := newTestWizard()
	advanceTo(t, w, StepDescribe)

	// Given: A nine character description
	w.SetDescription(strings.Repeat("a", 9))
	if _, ok := w.Submit(); ok {
		t.Fatal("Submit() with 9 characters = ok, want rejected")
	}
	if w.Step() != StepDescribe {
		t.Fatalf("Step() = %s after rejected submit, want describe", w.Step())
	}

	// When: Ten characters
	w.SetDescription(strings.Repeat("a", 10))
	if _, ok := w.Submit(); !ok {
		t.Fatal("Submit() with 10 characters rejected, want ok")
	}
}

func TestWizard_DescriptionCountsCharactersNotBytes(t *testing.T) {
	w, _ := newTestWizard()
	advanceTo(t, w, StepDescribe)

	// Nine runes, eighteen bytes
	w.SetDescription(strings.Repeat("ñ", 9))
	if w.CanProceed() {
		t.Error("CanProceed() with 9 multibyte characters = true, want false")
	}
}

func TestWizard_NextClampedAtStepFour(t *testing.T) {
	w, _ := newTestWizard()
	advanceTo(t, w, StepDescribe)
	w.SetDescription("Visible cracks in the seawall")

	if w.Next() {
		t.Error("Next() at describe = true, want false")
	}
	if w.Step() != StepDescribe {
		t.Errorf("Step() = %s, want describe", w.Step())
	}
}

func TestWizard_BackNavigation(t *testing.T) {
	w, _ := newTestWizard()

	if w.Back() {
		t.Error("Back() at step one = true, want false")
	}

	advanceTo(t, w, StepConfirmLocation)
	if !w.Back() || w.Step() != StepAttachEvidence {
		t.Errorf("Back() from confirm_location: step = %s, want attach_evidence", w.Step())
	}
}

func TestWizard_SubmitOnlyFromStepFour(t *testing.T) {
	w, _ := newTestWizard()
	w.SelectType(types.ReportSafety)
	w.SetDescription("A long enough description")

	if _, ok := w.Submit(); ok {
		t.Error("Submit() from step one = ok, want rejected")
	}
}

func TestWizard_Submission(t *testing.T) {
	w, s := newTestWizard()
	w.StartLocationDetection()
	advanceTo(t, w, StepAttachEvidence)
	w.AttachPhoto()
	advanceTo(t, w, StepDescribe)
	w.SetDescription("Construction site lacks safety barriers")

	sub, ok := w.Submit()
	if !ok {
		t.Fatal("Submit() rejected")
	}

	if !strings.HasPrefix(sub.ReferenceCode, ReferencePrefix) || len(sub.ReferenceCode) != len(ReferencePrefix)+26 {
		t.Errorf("ReferenceCode = %q, want RPT- followed by a ULID", sub.ReferenceCode)
	}
	r := sub.Report
	if r.Type != types.ReportSafety || r.Status != types.ReportPending {
		t.Errorf("Report type/status = %s/%s, want safety/pending", r.Type, r.Status)
	}
	if !r.HasPhoto || len(sub.Photos) != 1 {
		t.Errorf("HasPhoto = %v, Photos = %v, want true and one photo", r.HasPhoto, sub.Photos)
	}
	if r.ProjectID != "" {
		t.Errorf("ProjectID = %q, want empty", r.ProjectID)
	}
	if !r.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, fixedNow)
	}
	if !s.timers[0].stopped {
		t.Error("detection timer still active after submission")
	}
}

func TestWizard_SubmittedIsTerminal(t *testing.T) {
	w, _ := newTestWizard()
	advanceTo(t, w, StepDescribe)
	w.SetDescription("Road closure without notice")
	first, _ := w.Submit()

	if w.Back() || w.Next() {
		t.Error("navigation after submission succeeded")
	}
	if w.SelectType(types.ReportOther) || w.SetDescription("changed text here") || w.SetLocation("x") {
		t.Error("field edits after submission succeeded")
	}
	if ref := w.AttachPhoto(); ref != "" {
		t.Errorf("AttachPhoto() after submission = %q, want empty", ref)
	}
	if _, ok := w.Submit(); ok {
		t.Error("second Submit() = ok, want rejected")
	}

	st := w.Snapshot()
	if !st.Submitted || st.StepName != "submitted" || st.Progress != 100 {
		t.Errorf("state = %+v, want submitted at 100%%", st)
	}
	if st.Submission == nil || st.Submission.ReferenceCode != first.ReferenceCode {
		t.Error("Snapshot() does not carry the submission")
	}
}

func TestWizard_ReferenceCodesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		w, _ := newTestWizard()
		advanceTo(t, w, StepDescribe)
		w.SetDescription("Ghost deliveries of materials")
		sub, ok := w.Submit()
		if !ok {
			t.Fatal("Submit() rejected")
		}
		if seen[sub.ReferenceCode] {
			t.Fatalf("duplicate reference code %s", sub.ReferenceCode)
		}
		seen[sub.ReferenceCode] = true
	}
}

func TestWizard_CloseSupersedesDetection(t *testing.T) {
	w, s := newTestWizard()
	w.StartLocationDetection()

	w.Close()
	s.timers[0].fire()

	if got := w.Snapshot().Location; got != LocationPlaceholder {
		t.Errorf("Location = %q after Close, want placeholder", got)
	}
}

func TestWizard_RealSchedulerCompletes(t *testing.T) {
	w := New(Options{DetectionDelay: time.Millisecond, DetectedLocation: "Davao City"})
	w.StartLocationDetection()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Snapshot().LocationSource == LocationDetected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("detection did not complete")
}

func TestIssueTypes_CoverEveryReportType(t *testing.T) {
	if len(IssueTypes) != len(types.ReportTypes) {
		t.Fatalf("len(IssueTypes) = %d, want %d", len(IssueTypes), len(types.ReportTypes))
	}
	for i, it := range IssueTypes {
		if it.Type != types.ReportTypes[i] {
			t.Errorf("IssueTypes[%d].Type = %s, want %s", i, it.Type, types.ReportTypes[i])
		}
		if it.Label == "" || it.Description == "" {
			t.Errorf("IssueTypes[%d] missing label or description", i)
		}
	}
}
