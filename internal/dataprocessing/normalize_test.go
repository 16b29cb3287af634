package dataprocessing

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"dhsclean/pkg/contracts/domain"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{input: "23.4", want: 23.4, wantOK: true},
		{input: " 7 ", want: 7, wantOK: true},
		{input: "0", want: 0, wantOK: true},
		{input: "-2.5", want: -2.5, wantOK: true},
		{input: "1e2", want: 100, wantOK: true},
		{input: "n.a.", wantOK: false},
		{input: "23.4%", wantOK: false},
		{input: "", wantOK: false},
		{input: "NaN", wantOK: false},
		{input: "inf", wantOK: false},
		{input: "-inf", wantOK: false},
		{input: "+Inf", wantOK: false},
		{input: "Infinity", wantOK: false},
		{input: "1e400", wantOK: false},
		{input: "(12.0)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCoerceMetric(t *testing.T) {
	assert.Equal(t, domain.MetricOf(24.0), CoerceMetric(domain.TextOf("24.0")))
	assert.True(t, CoerceMetric(domain.TextOf("n.a.")).Missing())
	assert.True(t, CoerceMetric(domain.Text{}).Missing())

	zero := CoerceMetric(domain.TextOf("0.0"))
	assert.False(t, zero.Missing(), "zero is a value, not the missing sentinel")
}

func TestNormalizeMetrics_InfinityIsMissing(t *testing.T) {
	input := []domain.CleanRecord{
		{RawMetrics: [domain.MetricCount]domain.Text{domain.TextOf("3.4"), domain.TextOf("inf"), domain.TextOf("-Infinity")}},
	}

	got := DeriveFields(NormalizeMetrics(input))

	assert.False(t, got[0].Metrics[domain.MetricChildren].Missing())
	assert.True(t, got[0].Metrics[domain.MetricWomen].Missing())
	assert.True(t, got[0].Metrics[domain.MetricMen].Missing())
	assert.False(t, got[0].Complete[domain.MetricWomen])
	assert.False(t, got[0].Complete[domain.MetricMen])
	assert.False(t, got[0].HasAllMetrics)
}

func TestCoerceMetric_NumericRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 3.4, 24.0, 33.25, 100, 1.0 / 3} {
		text := domain.TextOf(strconv.FormatFloat(v, 'g', -1, 64))
		assert.Equal(t, domain.MetricOf(v), CoerceMetric(text))
	}
}

func TestNormalizeMetrics_Idempotent(t *testing.T) {
	input := []domain.CleanRecord{
		{RawMetrics: [domain.MetricCount]domain.Text{domain.TextOf("3.4"), domain.TextOf("24.0"), domain.TextOf("22.9")}},
		{RawMetrics: [domain.MetricCount]domain.Text{domain.TextOf("1.9"), domain.TextOf("n.a."), {}}},
		{RawMetrics: [domain.MetricCount]domain.Text{{}, {}, {}}},
	}

	once := NormalizeMetrics(input)
	twice := NormalizeMetrics(once)
	assert.Equal(t, once, twice)

	assert.Equal(t, domain.MetricOf(24.0), once[0].Metrics[domain.MetricWomen])
	assert.True(t, once[1].Metrics[domain.MetricWomen].Missing())
	assert.True(t, once[1].Metrics[domain.MetricMen].Missing())
	assert.Equal(t, domain.MetricOf(1.9), once[1].Metrics[domain.MetricChildren])

	assert.False(t, input[0].Metrics[domain.MetricChildren].Valid, "input records are not modified")
	assert.False(t, math.IsNaN(once[0].Metrics[domain.MetricMen].Value))
}
