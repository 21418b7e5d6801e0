package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

func TestCompare_PeriodsAreIsolated(t *testing.T) {
	fx := newFixture()
	decEnd := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	december := models.ActivationPeriod{Start: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), End: &decEnd}

	cmp := NewBuilder(DefaultOptions()).Compare(fx.form, fx.responses, fx.catalog,
		[]models.ActivationPeriod{fx.january, fx.february, december}, Filters{})

	require.Len(t, cmp.Periods, 3)

	jan, ok := cmp.ByKey(fx.january.Key())
	require.True(t, ok)
	assert.False(t, jan.NoData)
	assert.Equal(t, 1, jan.Result.FormStats.TotalResponses)

	feb, ok := cmp.ByKey(fx.february.Key())
	require.True(t, ok)
	assert.False(t, feb.NoData)
	assert.Equal(t, 1, feb.Result.FormStats.TotalResponses)

	dec, ok := cmp.ByKey(december.Key())
	require.True(t, ok)
	assert.True(t, dec.NoData)
	assert.Equal(t, FormStats{}, dec.Result.FormStats)
	require.Len(t, dec.Result.QuestionAnalytics, 3)
	assert.Equal(t, 0, dec.Result.QuestionAnalytics[0].TotalResponses)
}

func TestCompare_AlignsFacultyAcrossPeriods(t *testing.T) {
	fx := newFixture()

	cmp := NewBuilder(DefaultOptions()).Compare(fx.form, fx.responses, fx.catalog,
		[]models.ActivationPeriod{fx.january, fx.february}, Filters{})

	require.Len(t, cmp.Faculty, 3)
	names := []string{cmp.Faculty[0].Faculty.Name, cmp.Faculty[1].Faculty.Name, cmp.Faculty[2].Faculty.Name}
	assert.Equal(t, []string{"Alice", "Bob", "Not Assigned"}, names)

	for _, series := range cmp.Faculty {
		assert.Len(t, series.Periods, 2, series.Faculty.Name)
	}

	bob := cmp.Faculty[1]
	assert.Equal(t, fx.january.Key(), bob.Periods[0].PeriodKey)
	assert.False(t, bob.Periods[0].HasData)
	assert.Nil(t, bob.Periods[0].Analytics)
	assert.True(t, bob.Periods[1].HasData)
	require.NotNil(t, bob.Periods[1].Analytics)
	assert.Equal(t, 1, bob.Periods[1].Analytics.TotalResponses)

	alice := cmp.Faculty[0]
	assert.True(t, alice.Periods[0].HasData)
	assert.False(t, alice.Periods[1].HasData)
}

func TestCompare_DuplicatePeriodsReportedOnce(t *testing.T) {
	fx := newFixture()

	cmp := NewBuilder(DefaultOptions()).Compare(fx.form, fx.responses, fx.catalog,
		[]models.ActivationPeriod{fx.january, fx.january}, Filters{})

	assert.Len(t, cmp.Periods, 1)
}

func TestCompare_NoPeriods(t *testing.T) {
	fx := newFixture()

	cmp := NewBuilder(DefaultOptions()).Compare(fx.form, fx.responses, fx.catalog, nil, Filters{})

	assert.Empty(t, cmp.Periods)
	assert.NotNil(t, cmp.Faculty)
	assert.Empty(t, cmp.Faculty)
}
