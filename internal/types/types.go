package types

import "time"

// ProjectStatus represents the delivery state of a project
type ProjectStatus string

const (
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectDelayed   ProjectStatus = "delayed"
	ProjectCompleted ProjectStatus = "completed"
)

// ProjectStatuses lists every ProjectStatus in display order.
var ProjectStatuses = []ProjectStatus{ProjectOngoing, ProjectDelayed, ProjectCompleted}

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOngoing, ProjectDelayed, ProjectCompleted:
		return true
	}
	return false
}

// TimelineStatus represents where a milestone sits relative to today
type TimelineStatus string

const (
	TimelineCompleted TimelineStatus = "completed"
	TimelineCurrent   TimelineStatus = "current"
	TimelineUpcoming  TimelineStatus = "upcoming"
)

// Valid reports whether s is a known timeline status.
func (s TimelineStatus) Valid() bool {
	switch s {
	case TimelineCompleted, TimelineCurrent, TimelineUpcoming:
		return true
	}
	return false
}

// ReportType represents the classification of a citizen report
type ReportType string

const (
	ReportDelay      ReportType = "delay"
	ReportQuality    ReportType = "quality"
	ReportSafety     ReportType = "safety"
	ReportCorruption ReportType = "corruption"
	ReportOther      ReportType = "other"
)

// ReportTypes lists every ReportType in wizard order.
var ReportTypes = []ReportType{ReportDelay, ReportQuality, ReportSafety, ReportCorruption, ReportOther}

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportDelay, ReportQuality, ReportSafety, ReportCorruption, ReportOther:
		return true
	}
	return false
}

// ReportStatus represents the review state of a report
type ReportStatus string

const (
	ReportPending     ReportStatus = "pending"
	ReportUnderReview ReportStatus = "under_review"
	ReportVerified    ReportStatus = "verified"
	ReportResolved    ReportStatus = "resolved"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportUnderReview, ReportVerified, ReportResolved:
		return true
	}
	return false
}

// ValidationType represents the kind of evidence open for community voting
type ValidationType string

const (
	ValidationPhoto      ValidationType = "photo"
	ValidationProgress   ValidationType = "progress"
	ValidationCompletion ValidationType = "completion"
)

// Valid reports whether t is a known validation type.
func (t ValidationType) Valid() bool {
	switch t {
	case ValidationPhoto, ValidationProgress, ValidationCompletion:
		return true
	}
	return false
}

// Coordinates is a WGS84 position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Project represents a tracked public-infrastructure undertaking
type Project struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	Region          string          `json:"region"`
	Coordinates     Coordinates     `json:"coordinates"`
	Status          ProjectStatus   `json:"status"`
	Budget          float64         `json:"budget"`
	Disbursed       float64         `json:"disbursed"`
	Progress        int             `json:"progress"`
	ValidationScore int             `json:"validation_score"`
	ValidationCount int             `json:"validation_count"`
	StartDate       time.Time       `json:"start_date"`
	TargetDate      time.Time       `json:"target_date"`
	Contractor      string          `json:"contractor"`
	Agency          string          `json:"agency"`
	Timeline        []TimelineEvent `json:"timeline"`
	Photos          []ProjectPhoto  `json:"photos"`
}

// TimelineEvent is a milestone in a project's schedule.
// Insertion order is chronological order.
type TimelineEvent struct {
	ID          string         `json:"id"`
	Date        time.Time      `json:"date"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TimelineStatus `json:"status"`
}

// ProjectPhoto is a piece of photographic evidence attached to a project
type ProjectPhoto struct {
	ID                 string    `json:"id"`
	URL                string    `json:"url"`
	Caption            string    `json:"caption"`
	Timestamp          time.Time `json:"timestamp"`
	GPSCoordinates     string    `json:"gps_coordinates"`
	AIValidated        bool      `json:"ai_validated"`
	CommunityValidated bool      `json:"community_validated"`
	ValidationCount    int       `json:"validation_count"`
}

// Report is a citizen-submitted issue record.
// ProjectID is empty when the report is not tied to a project.
type Report struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id,omitempty"`
	Type        ReportType   `json:"type"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Location    string       `json:"location"`
	HasPhoto    bool         `json:"has_photo"`
}

// ValidationItem is a unit of project evidence open for confirm/flag voting.
// ProjectName is a snapshot taken when the item was created and is not kept
// in sync with Project.Name.
type ValidationItem struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id"`
	ProjectName  string         `json:"project_name"`
	Type         ValidationType `json:"type"`
	Description  string         `json:"description"`
	PhotoURL     string         `json:"photo_url,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Location     string         `json:"location"`
	ConfirmCount int            `json:"confirm_count"`
	FlagCount    int            `json:"flag_count"`
}

// DashboardStats is an independently seeded aggregate snapshot.
type DashboardStats struct {
	TotalProjects     int     `json:"total_projects"`
	OngoingProjects   int     `json:"ongoing_projects"`
	CompletedProjects int     `json:"completed_projects"`
	DelayedProjects   int     `json:"delayed_projects"`
	TotalBudget       float64 `json:"total_budget"`
	TotalDisbursed    float64 `json:"total_disbursed"`
	TotalReports      int     `json:"total_reports"`
	PendingReports    int     `json:"pending_reports"`
	AverageValidation int     `json:"average_validation"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	ProjectCount    int    `json:"project_count"`
	ReportCount     int    `json:"report_count"`
	ActiveSessions  int    `json:"active_sessions"`
	SimilarityHints bool   `json:"similarity_hints"`
}
