package report

import (
	"sort"

	"github.com/bloemp/stockreport/internal/domain/models"
)

// LatestResults collapses a result history into at most one result per key.
// When several results share a key the most recent date wins; ties keep the
// later entry in input order, matching how operators append outcomes.
func LatestResults(results []models.TestResult) map[string]models.TestResult {
	latest := make(map[string]models.TestResult, len(results))
	for _, result := range results {
		key := result.Key()
		if current, ok := latest[key]; ok && current.Date.After(result.Date) {
			continue
		}
		latest[key] = result
	}
	return latest
}

// TemplateMap keys templates for reconciliation lookup. When two templates
// normalize to the same key the first one declared wins.
func TemplateMap(templates []models.TestTemplate) map[string]models.TestTemplate {
	byKey := make(map[string]models.TestTemplate, len(templates))
	for _, tpl := range templates {
		key := tpl.Key()
		if _, ok := byKey[key]; !ok {
			byKey[key] = tpl
		}
	}
	return byKey
}

// UnionKeys returns the ordered display key set: every templated key in the
// supplied template order, then every result-only key sorted lexically. A
// result recorded against a test no longer templated still gets a row.
func UnionKeys(templates []models.TestTemplate, results map[string]models.TestResult) []string {
	seen := make(map[string]bool, len(templates)+len(results))
	keys := make([]string, 0, len(templates)+len(results))

	for _, tpl := range templates {
		key := tpl.Key()
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	var extra []string
	for key := range results {
		if !seen[key] {
			seen[key] = true
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...)
}

// Reconcile produces one display row per key, in key order. Each key
// resolves to one of four variants depending on which lookups hit:
//
//	template+result  label from template, status from result
//	template only    label from template, missing (required variant if set)
//	result only      label from recorded result name, status from result
//	neither          raw key with error styling; never an error
//
// Reconcile is pure: it does not mutate its inputs and identical inputs
// yield identical rows.
func Reconcile(keys []string, templates map[string]models.TestTemplate, results map[string]models.TestResult) []models.TestRow {
	rows := make([]models.TestRow, 0, len(keys))

	for _, key := range keys {
		tpl, hasTemplate := templates[key]
		result, hasResult := results[key]

		row := models.TestRow{Key: key}

		switch {
		case hasTemplate && hasResult:
			row.Source = models.SourceTemplateAndResult
			row.Label = tpl.TestName
			row.Required = tpl.Required
		case hasTemplate:
			row.Source = models.SourceTemplateOnly
			row.Label = tpl.TestName
			row.Required = tpl.Required
		case hasResult:
			row.Source = models.SourceResultOnly
			row.Label = result.TestName
		default:
			row.Source = models.SourceOrphan
			row.Label = key
		}

		if hasResult {
			if result.Result {
				row.Status = models.StatusPass
			} else {
				row.Status = models.StatusFail
			}
			row.Value = result.Value
			row.User = result.User
			row.Date = result.Date
		} else if hasTemplate && tpl.Required {
			row.Status = models.StatusMissingRequired
		} else {
			row.Status = models.StatusMissing
		}

		rows = append(rows, row)
	}

	return rows
}
