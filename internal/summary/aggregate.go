// Package summary derives dashboard statistics from campaign rows without
// leaking columns the actor cannot read. Spend-derived numbers are gated on
// column access before computation: masking the inputs and summing anyway
// would either crash or report the sentinel as zero, and zero is a
// legitimate value that must stay distinguishable from "not permitted".
package summary

import (
	"sort"
	"time"

	"campaign-access-service/internal/access"
	"campaign-access-service/internal/model"
)

// GroupSpend is one label/value pair of a spend distribution.
type GroupSpend struct {
	Label string `json:"label"`
	Spend int64  `json:"spend"`
}

// DashboardSummary is the aggregate view for one reference date. Nil spend
// aggregates mean the profile may not read the spend column; a distribution
// is empty when either spend or its grouping column is denied, since the
// labels are the grouping column's values. Counts depend only on row
// visibility and are always set.
type DashboardSummary struct {
	ActiveCampaigns int          `json:"active_campaigns"`
	PeriodSpend     *int64       `json:"period_spend"`
	YearlySpend     *int64       `json:"yearly_spend"`
	SpendByCreative []GroupSpend `json:"spend_by_creative"`
	SpendByAgency   []GroupSpend `json:"spend_by_agency"`
}

// window is a closed [Start, End] date interval.
type window struct {
	Start time.Time
	End   time.Time
}

// overlaps reports whether the row's [start, end] interval intersects the
// window, inclusive on both ends. Full containment either way counts.
func (w window) overlaps(start, end time.Time) bool {
	return !start.After(w.End) && !end.Before(w.Start)
}

// monthWindow returns the calendar month containing ref.
func monthWindow(ref time.Time) window {
	year, month, _ := ref.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return window{Start: start, End: end}
}

// yearWindow returns the calendar year containing ref.
func yearWindow(ref time.Time) window {
	start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return window{Start: start, End: end}
}

// Build computes the summary for the profile. Row scoping always applies
// first; column gating applies to every spend-derived statistic.
func Build(rows []model.Campaign, profile model.UserAccessProfile, refDate time.Time) DashboardSummary {
	visible := access.FilterRowsByScope(rows, profile)

	month := monthWindow(refDate)
	year := yearWindow(refDate)

	periodRows := make([]model.Campaign, 0, len(visible))
	yearRows := make([]model.Campaign, 0, len(visible))
	for _, row := range visible {
		if month.overlaps(row.StartDate, row.EndDate) {
			periodRows = append(periodRows, row)
		}
		if year.overlaps(row.StartDate, row.EndDate) {
			yearRows = append(yearRows, row)
		}
	}

	out := DashboardSummary{
		ActiveCampaigns: len(periodRows),
		SpendByCreative: []GroupSpend{},
		SpendByAgency:   []GroupSpend{},
	}

	if !access.HasColumnAccess(profile, model.ColumnSpend) {
		return out
	}

	periodSpend := sumSpend(periodRows)
	yearlySpend := sumSpend(yearRows)
	out.PeriodSpend = &periodSpend
	out.YearlySpend = &yearlySpend

	// A distribution depends on its grouping column as much as on spend:
	// the labels are that column's values, so a denied grouping column
	// yields an empty distribution rather than leaking through the labels.
	if access.HasColumnAccess(profile, model.ColumnCreative) {
		out.SpendByCreative = distribution(periodRows, func(c model.Campaign) string { return c.Creative })
	}
	if access.HasColumnAccess(profile, model.ColumnAgency) {
		out.SpendByAgency = distribution(periodRows, func(c model.Campaign) string { return c.Agency })
	}
	return out
}

func sumSpend(rows []model.Campaign) int64 {
	var total int64
	for _, row := range rows {
		total += row.Spend
	}
	return total
}

// distribution accumulates spend by group label and projects the result
// sorted by descending spend, ties broken by label.
func distribution(rows []model.Campaign, groupBy func(model.Campaign) string) []GroupSpend {
	totals := make(map[string]int64)
	for _, row := range rows {
		totals[groupBy(row)] += row.Spend
	}

	out := make([]GroupSpend, 0, len(totals))
	for label, spend := range totals {
		out = append(out, GroupSpend{Label: label, Spend: spend})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Label < out[j].Label
	})
	return out
}
