package filter

import (
	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/helpers"
)

// Query is the sources filter form: scalar filters on the source itself
// plus the entry filters, where framework filters live.
// Dates are calendar dates (YYYY-MM-DD) until QueryVariables converts them.
type Query struct {
	Search                     string             `json:"search,omitempty"`
	Statuses                   []string           `json:"statuses,omitempty"`
	Assignees                  []string           `json:"assignees,omitempty"`
	Priorities                 []string           `json:"priorities,omitempty"`
	AuthoringOrganizationTypes []string           `json:"authoringOrganizationTypes,omitempty"`
	AuthorOrganizations        []string           `json:"authorOrganizations,omitempty"`
	SourceOrganizations        []string           `json:"sourceOrganizations,omitempty"`
	Confidentiality            *string            `json:"confidentiality,omitempty"`
	HasEntries                 *bool              `json:"hasEntries,omitempty"`
	HasAssessment              *bool              `json:"hasAssessment,omitempty"`
	CreatedAtGte               *string            `json:"createdAtGte,omitempty"`
	CreatedAtLte               *string            `json:"createdAtLte,omitempty"`
	PublishedOnGte             *string            `json:"publishedOnGte,omitempty"`
	PublishedOnLte             *string            `json:"publishedOnLte,omitempty"`
	EntriesFilterData          *EntriesFilterData `json:"entriesFilterData,omitempty"`
}

// EntriesFilterData filters sources by their entries.
type EntriesFilterData struct {
	Search         *string  `json:"search,omitempty"`
	CreatedBy      []string `json:"createdBy,omitempty"`
	Controlled     *bool    `json:"controlled,omitempty"`
	HasComment     *bool    `json:"hasComment,omitempty"`
	EntryTypes     []string `json:"entryTypes,omitempty"`
	CreatedAtGte   *string  `json:"createdAtGte,omitempty"`
	CreatedAtLte   *string  `json:"createdAtLte,omitempty"`
	FilterableData []Value  `json:"filterableData,omitempty"`
}

// empty reports whether e filters nothing.
func (e *EntriesFilterData) empty() bool {
	return e == nil ||
		helpers.Blank(e.Search) &&
			len(e.CreatedBy) == 0 &&
			e.Controlled == nil &&
			e.HasComment == nil &&
			len(e.EntryTypes) == 0 &&
			helpers.Blank(e.CreatedAtGte) &&
			helpers.Blank(e.CreatedAtLte) &&
			len(e.FilterableData) == 0
}

// Variables is the payload handed to the data layer.
type Variables struct {
	ProjectID string `json:"projectId"`
	Query
}

// QueryVariables assembles the query payload. Creation dates become ISO
// date-times with the upper bound at the end of its day. Framework filters
// without data are dropped and the rest ordered by filter order; entry
// filters that end up empty are omitted.
func (b *Builder) QueryVariables(projectID string, q Query, filters []Filter) Variables {
	out := q
	out.CreatedAtGte = b.convertDate(q.CreatedAtGte, false)
	out.CreatedAtLte = b.convertDate(q.CreatedAtLte, true)

	if q.EntriesFilterData != nil {
		entries := *q.EntriesFilterData
		entries.CreatedAtGte = b.convertDate(entries.CreatedAtGte, false)
		entries.CreatedAtLte = b.convertDate(entries.CreatedAtLte, true)
		entries.FilterableData = b.Encode(filters, entries.FilterableData)
		if len(entries.FilterableData) == 0 {
			entries.FilterableData = nil
		}
		out.EntriesFilterData = &entries
		if entries.empty() {
			out.EntriesFilterData = nil
		}
	}

	return Variables{ProjectID: projectID, Query: out}
}

func (b *Builder) convertDate(date *string, endOfDay bool) *string {
	if helpers.Blank(date) {
		return nil
	}
	iso, err := b.isoDateTime(*date, endOfDay)
	if err != nil {
		b.logger.Warn("invalid date dropped from query", zap.String("date", *date), zap.Error(err))
		return nil
	}
	return helpers.Ptr(iso)
}
