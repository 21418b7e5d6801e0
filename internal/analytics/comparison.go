package analytics

import (
	"sort"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// PeriodResult is the analytics of one activation period. NoData is set when
// the period matched no responses; Result is then the zero-valued shape and
// never another period's numbers.
type PeriodResult struct {
	Key    string                  `json:"key"`
	Period models.ActivationPeriod `json:"period"`
	NoData bool                    `json:"no_data"`
	Result *Result                 `json:"result"`
}

// FacultyPeriodCell is one faculty's analytics in one period.
type FacultyPeriodCell struct {
	PeriodKey string            `json:"period_key"`
	HasData   bool              `json:"has_data"`
	Analytics *FacultyAnalytics `json:"analytics,omitempty"`
}

// FacultySeries aligns a faculty across every compared period; it has one
// cell per period in request order.
type FacultySeries struct {
	Faculty FacultyRef          `json:"faculty"`
	Periods []FacultyPeriodCell `json:"periods"`
}

type Comparison struct {
	FormID  string          `json:"form_id"`
	Periods []PeriodResult  `json:"periods"`
	Faculty []FacultySeries `json:"faculty"`
}

// ByKey returns the result for the period identified by key.
func (c *Comparison) ByKey(key string) (*PeriodResult, bool) {
	for i := range c.Periods {
		if c.Periods[i].Key == key {
			return &c.Periods[i], true
		}
	}
	return nil, false
}

// Compare builds each period independently with filters narrowed to it.
// Duplicate periods are reported once.
func (b *Builder) Compare(form *models.FeedbackForm, responses []models.Response, catalog Catalog, periods []models.ActivationPeriod, filters Filters) *Comparison {
	cmp := &Comparison{
		FormID:  form.ID,
		Periods: make([]PeriodResult, 0, len(periods)),
		Faculty: []FacultySeries{},
	}

	seenPeriods := make(map[string]bool, len(periods))
	for _, p := range periods {
		key := p.Key()
		if seenPeriods[key] {
			continue
		}
		seenPeriods[key] = true

		res := b.Build(form, responses, catalog, filters.WithPeriod(p))
		cmp.Periods = append(cmp.Periods, PeriodResult{
			Key:    key,
			Period: p,
			NoData: res.FormStats.TotalResponses == 0,
			Result: res,
		})
	}

	refs := make(map[string]FacultyRef)
	for _, pr := range cmp.Periods {
		for _, fa := range pr.Result.FacultyAnalytics {
			if _, ok := refs[fa.Faculty.ID]; !ok {
				refs[fa.Faculty.ID] = fa.Faculty
			}
		}
	}

	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return facultyLess(refs[ids[i]], refs[ids[j]])
	})

	for _, id := range ids {
		series := FacultySeries{Faculty: refs[id], Periods: make([]FacultyPeriodCell, 0, len(cmp.Periods))}
		for _, pr := range cmp.Periods {
			cell := FacultyPeriodCell{PeriodKey: pr.Key}
			for i := range pr.Result.FacultyAnalytics {
				fa := &pr.Result.FacultyAnalytics[i]
				if fa.Faculty.ID == id && fa.TotalResponses > 0 {
					cell.HasData = true
					cell.Analytics = fa
					break
				}
			}
			series.Periods = append(series.Periods, cell)
		}
		cmp.Faculty = append(cmp.Faculty, series)
	}

	return cmp
}
