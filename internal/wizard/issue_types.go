package wizard

import "github.com/hyperengineering/aequiflow/internal/types"

// IssueType describes a selectable report type.
type IssueType struct {
	Type        types.ReportType `json:"type"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
}

// IssueTypes is the fixed step-one catalogue in display order.
var IssueTypes = []IssueType{
	{Type: types.ReportDelay, Label: "Project Delay", Description: "Work has stopped or is behind schedule"},
	{Type: types.ReportQuality, Label: "Quality Concern", Description: "Substandard materials or workmanship"},
	{Type: types.ReportSafety, Label: "Safety Issue", Description: "Hazards to workers or public safety"},
	{Type: types.ReportCorruption, Label: "Irregularity", Description: "Suspected misuse of funds or resources"},
	{Type: types.ReportOther, Label: "Other", Description: "Any other concern not listed above"},
}
