package service

import (
	"strings"

	"packtrack/internal/features/tracking/domain"
)

// Filters narrows the package buckets by case-insensitive substring match.
// Empty fields match everything; errors are never filtered.
type Filters struct {
	Carrier   string
	Sender    string
	Recipient string
}

// Report holds the classified buckets of a tracking run, each in tracker
// output order.
type Report struct {
	Delivered []*domain.Package       `json:"delivered"`
	InTransit []*domain.Package       `json:"in_transit"`
	Errors    []*domain.TrackingError `json:"errors"`
}

// ClassifyAndFilter splits outcomes into delivered, in-transit and error
// buckets and applies the filters to the package buckets. Packages with an
// Unknown status land in the in-transit bucket. All filters must match
// (conjunction); a package missing a filtered attribute is excluded.
func ClassifyAndFilter(outcomes []domain.Outcome, filters Filters) *Report {
	report := &Report{
		Delivered: []*domain.Package{},
		InTransit: []*domain.Package{},
		Errors:    []*domain.TrackingError{},
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			report.Errors = append(report.Errors, outcome.Err)
			continue
		}
		pkg := outcome.Package
		if !matches(pkg, filters) {
			continue
		}
		if pkg.Status == domain.StatusDelivered {
			report.Delivered = append(report.Delivered, pkg)
		} else {
			report.InTransit = append(report.InTransit, pkg)
		}
	}

	return report
}

func matches(pkg *domain.Package, filters Filters) bool {
	return matchesFilter(string(pkg.Carrier), filters.Carrier) &&
		matchesFilter(pkg.Sender, filters.Sender) &&
		matchesFilter(pkg.Recipient, filters.Recipient)
}

// matchesFilter reports whether value contains filter, ignoring case. An
// empty filter always matches; an empty value never matches a set filter.
func matchesFilter(value, filter string) bool {
	if filter == "" {
		return true
	}
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}
