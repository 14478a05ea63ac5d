package validation

import (
	"github.com/hyperengineering/aequiflow/internal/filter"
	"github.com/hyperengineering/aequiflow/internal/types"
)

const (
	MaxQueryLength       = 200
	MaxLocationLength    = 200
	MaxDescriptionLength = 2000
)

// text runs the checks shared by every free-text field.
func text(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateProjectQuery checks list and map filter parameters.
// An empty status or "all" selects every status.
func ValidateProjectQuery(q filter.ProjectQuery) []ValidationError {
	c := &Collector{}
	text(c, "q", q.Query, MaxQueryLength)
	text(c, "region", q.Region, MaxQueryLength)
	if q.Status != "" {
		allowed := []string{filter.MatchAll}
		for _, s := range types.ProjectStatuses {
			allowed = append(allowed, string(s))
		}
		c.Add(ValidateEnum("status", q.Status, allowed))
	}
	return c.Errors()
}

// ValidateReportType checks a wizard issue type selection.
func ValidateReportType(value string) []ValidationError {
	c := &Collector{}
	c.Add(ValidateRequired("type", value))
	if c.HasErrors() {
		return c.Errors()
	}
	allowed := make([]string, len(types.ReportTypes))
	for i, t := range types.ReportTypes {
		allowed[i] = string(t)
	}
	c.Add(ValidateEnum("type", value, allowed))
	return c.Errors()
}

// ValidateLocation checks a manually entered location. A blank entry is
// valid input; the wizard's location gate rejects it on advance.
func ValidateLocation(value string) []ValidationError {
	c := &Collector{}
	text(c, "location", value, MaxLocationLength)
	return c.Errors()
}

// ValidateDescription checks a report description. Short descriptions are
// accepted here; the wizard's own gate decides whether they may advance.
func ValidateDescription(value string) []ValidationError {
	c := &Collector{}
	text(c, "description", value, MaxDescriptionLength)
	return c.Errors()
}
