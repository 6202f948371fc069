package utils

import (
	"strings"
)

// Human readable labels for workflow statuses, used in notifications and
// CSV reports.
var statusLabels = map[string]string{
	"SUBMITTED_RM": "Submitted to Reporting Manager",
	"APPROVED_RM":  "Approved by Reporting Manager",
	"REJECTED_RM":  "Rejected by Reporting Manager",
	"REWORK_RM":    "Rework requested by Reporting Manager",
	"APPROVED_IBU": "Approved by IBU Head",
	"REJECTED_IBU": "Rejected by IBU Head",
	"REWORK_IBU":   "Rework requested by IBU Head",
	"DRAFT":        "Draft",
	"LIVE":         "Live",
	"COMPLETED":    "Completed",
	"ARCHIVED":     "Archived",
}

var (
	// Alternate spellings accepted from older clients.
	statusCodeSynonyms = map[string][]string{
		"SUBMITTED_RM": {"submitted", "rm_pending", "pending_rm"},
		"APPROVED_RM":  {"rm_approved", "ibu_pending", "pending_ibu"},
		"REJECTED_RM":  {"rm_rejected"},
		"REWORK_RM":    {"rm_rework"},
		"APPROVED_IBU": {"ibu_approved"},
		"REJECTED_IBU": {"ibu_rejected"},
		"REWORK_IBU":   {"ibu_rework"},
		"LIVE":         {"published", "active"},
	}
	statusAliasToCanonical = buildStatusAliasMap()
)

func buildStatusAliasMap() map[string]string {
	aliasMap := make(map[string]string)
	for canonical := range statusLabels {
		aliasMap[normalizeStatusCode(canonical)] = canonical
	}
	for canonical, synonyms := range statusCodeSynonyms {
		for _, synonym := range synonyms {
			aliasMap[normalizeStatusCode(synonym)] = canonical
		}
	}
	return aliasMap
}

func normalizeStatusCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return strings.NewReplacer("-", "_", " ", "_").Replace(code)
}

// CanonicalStatus maps a status code or one of its aliases to the canonical
// upper-case code. Unknown input is returned upper-cased and trimmed.
func CanonicalStatus(code string) string {
	if canonical, ok := statusAliasToCanonical[normalizeStatusCode(code)]; ok {
		return canonical
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// StatusLabel returns the display label for a status code.
func StatusLabel(code string) string {
	if label, ok := statusLabels[CanonicalStatus(code)]; ok {
		return label
	}
	return code
}
