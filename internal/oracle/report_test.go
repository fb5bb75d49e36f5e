package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReport(t *testing.T) {
	raw := `{"risk_level": "High Risk", "summary": "Multiple false claims.", "content_red_flags": ["sensational headline"]}`

	r := ParseReport(raw)

	assert.Equal(t, RiskHigh, r.RiskLevel)
	assert.Equal(t, "Multiple false claims.", r.Summary)
	assert.Equal(t, raw, r.Raw)
	assert.Contains(t, r.Details, "content_red_flags")
}

func TestParseReportFenced(t *testing.T) {
	raw := "```json\n{\"risk_level\": \"Low Risk\", \"summary\": \"Checks out.\"}\n```"

	r := ParseReport(raw)

	assert.Equal(t, RiskLow, r.RiskLevel)
	assert.Equal(t, "Checks out.", r.Summary)
}

func TestParseReportAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RiskLevel
	}{
		{"camelCase risk", `{"riskLevel": "Medium Risk", "summary": "x"}`, RiskMedium},
		{"bare risk key", `{"risk": "verified", "summary": "x"}`, RiskVerified},
		{"verdict key", `{"verdict": "high", "summary": "x"}`, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseReport(tt.raw)
			assert.Equal(t, tt.want, r.RiskLevel)
		})
	}
}

func TestParseReportSummaryAliases(t *testing.T) {
	r := ParseReport(`{"risk_level": "Low Risk", "analysis_summary": "from alias"}`)
	assert.Equal(t, "from alias", r.Summary)
}

func TestParseReportGarbage(t *testing.T) {
	r := ParseReport("I could not produce JSON, sorry.")

	assert.Equal(t, RiskError, r.RiskLevel)
	assert.Equal(t, "I could not produce JSON, sorry.", r.Raw)
	assert.Empty(t, r.Details)
}

func TestParseReportUnknownRiskLabel(t *testing.T) {
	r := ParseReport(`{"risk_level": "Extremely Dangerous", "summary": "x"}`)
	assert.Equal(t, RiskError, r.RiskLevel, "labels outside the closed set must not pass through")
}

func TestNormalizeRisk(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
	}{
		{"Verified", RiskVerified},
		{"verified", RiskVerified},
		{"LOW RISK", RiskLow},
		{"low", RiskLow},
		{"medium", RiskMedium},
		{"Moderate Risk", RiskMedium},
		{"high risk", RiskHigh},
		{" High Risk ", RiskHigh},
		{"", RiskError},
		{"banana", RiskError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRisk(tt.input))
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.input))
		})
	}
}
