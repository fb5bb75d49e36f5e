package oracle

import (
	"encoding/json"
	"strings"
)

// RiskLevel is the closed verdict set every report carries
type RiskLevel string

const (
	RiskVerified RiskLevel = "Verified"
	RiskLow      RiskLevel = "Low Risk"
	RiskMedium   RiskLevel = "Medium Risk"
	RiskHigh     RiskLevel = "High Risk"
	RiskError    RiskLevel = "Error"
)

// Report is the normalized analysis verdict. Details holds the full
// parsed response including channel-specific sections; Raw is the
// unmodified oracle output and is persisted before parsing is attempted.
type Report struct {
	RiskLevel RiskLevel      `json:"risk_level"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details,omitempty"`
	Raw       string         `json:"-"`
}

// Field aliases: models drift between naming conventions, so each
// normalized field resolves through an explicit alias list instead of
// scattered ad hoc lookups.
var (
	riskAliases    = []string{"risk_level", "riskLevel", "risk", "risk_rating", "verdict"}
	summaryAliases = []string{"summary", "analysis_summary", "overall_summary", "analysis"}
)

// ParseReport turns raw oracle output into a Report. It never fails:
// unparseable output yields a RiskError report with the raw text kept.
func ParseReport(raw string) *Report {
	report := &Report{Raw: raw}

	cleaned := stripFences(raw)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		report.RiskLevel = RiskError
		report.Summary = "oracle returned output that is not valid JSON"
		return report
	}

	report.Details = parsed
	report.RiskLevel = normalizeRisk(resolveAlias(parsed, riskAliases))
	report.Summary = resolveAlias(parsed, summaryAliases)

	return report
}

// resolveAlias returns the first alias present in the map as a string
func resolveAlias(m map[string]any, aliases []string) string {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// normalizeRisk maps free-form risk labels onto the closed set,
// case-insensitively. Anything unrecognized is an Error verdict so a
// hallucinated label can never masquerade as a clean one.
func normalizeRisk(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return RiskVerified
	case "low risk", "low":
		return RiskLow
	case "medium risk", "medium", "moderate risk", "moderate":
		return RiskMedium
	case "high risk", "high":
		return RiskHigh
	}
	return RiskError
}

// stripFences removes Markdown code fences models wrap JSON in
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```json)
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
