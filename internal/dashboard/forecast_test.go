package dashboard_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/dashboard"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourlyTotals(t *testing.T) {
	sales := []domain.Sale{
		sale(2*time.Hour+10*time.Minute, "Delhi", "Pizza", 1, 100),
		sale(0, "Delhi", "Pizza", 1, 100),
		sale(59*time.Minute, "Mumbai", "Pizza", 1, 250),
		sale(2*time.Hour, "Delhi", "Pizza", 1, 300),
	}

	got := dashboard.HourlyTotals(sales)

	want := []dashboard.HourlyTotal{
		{Hour: day, Total: 350},
		{Hour: day.Add(2 * time.Hour), Total: 400},
	}
	assert.Equal(t, want, got)
}

func TestHourlyTotals_HalfHourOffsetZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	s := domain.Sale{Timestamp: time.Date(2024, 1, 1, 10, 45, 0, 0, ist), Price: 100}

	got := dashboard.HourlyTotals([]domain.Sale{s})

	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, ist), got[0].Hour)
}

func TestForecastHourly_PerfectTrend(t *testing.T) {
	totals := []dashboard.HourlyTotal{
		{Hour: day, Total: 100},
		{Hour: day.Add(time.Hour), Total: 200},
		{Hour: day.Add(2 * time.Hour), Total: 300},
	}

	f, err := dashboard.ForecastHourly(totals, dashboard.DefaultHorizon)
	require.NoError(t, err)

	assert.InDelta(t, 100, f.Slope, 1e-9)
	assert.InDelta(t, 100, f.Intercept, 1e-9)
	require.Len(t, f.Points, 3+dashboard.DefaultHorizon)

	require.NotNil(t, f.Points[0].Actual)
	assert.Equal(t, 100, *f.Points[0].Actual)

	next := f.Points[3]
	assert.Nil(t, next.Actual)
	assert.Equal(t, day.Add(3*time.Hour), next.Hour)
	assert.InDelta(t, 400, next.Predicted, 1e-9)
	assert.InDelta(t, next.Predicted, next.Lower, 1e-9, "zero residuals give a zero-width band")
	assert.InDelta(t, next.Predicted, next.Upper, 1e-9)

	last := f.Points[len(f.Points)-1]
	assert.Equal(t, day.Add(time.Duration(2+dashboard.DefaultHorizon)*time.Hour), last.Hour)
}

func TestForecastHourly_ResidualBand(t *testing.T) {
	totals := []dashboard.HourlyTotal{
		{Hour: day, Total: 100},
		{Hour: day.Add(time.Hour), Total: 300},
		{Hour: day.Add(2 * time.Hour), Total: 200},
	}

	f, err := dashboard.ForecastHourly(totals, 1)
	require.NoError(t, err)

	// slope 50, intercept 150, residuals -50/100/-50, sigma sqrt(15000/1).
	assert.InDelta(t, 50, f.Slope, 1e-9)
	assert.InDelta(t, 150, f.Intercept, 1e-9)
	band := 1.96 * 122.47448713915891
	p := f.Points[3]
	assert.InDelta(t, 300, p.Predicted, 1e-9)
	assert.InDelta(t, 300-band, p.Lower, 1e-6)
	assert.InDelta(t, 300+band, p.Upper, 1e-6)
}

func TestForecastHourly_GapsUseElapsedHours(t *testing.T) {
	totals := []dashboard.HourlyTotal{
		{Hour: day, Total: 100},
		{Hour: day.Add(4 * time.Hour), Total: 500},
	}

	f, err := dashboard.ForecastHourly(totals, 0)
	require.NoError(t, err)

	assert.InDelta(t, 100, f.Slope, 1e-9)
	assert.Len(t, f.Points, 2)
}

func TestForecastHourly_InsufficientData(t *testing.T) {
	_, err := dashboard.ForecastHourly(nil, dashboard.DefaultHorizon)
	assert.ErrorIs(t, err, dashboard.ErrInsufficientData)

	_, err = dashboard.ForecastHourly([]dashboard.HourlyTotal{{Hour: day, Total: 100}}, dashboard.DefaultHorizon)
	assert.ErrorIs(t, err, dashboard.ErrInsufficientData)
}
