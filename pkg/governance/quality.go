// Package governance reports on data quality, feature drift and the health
// of the platform's data dependencies.
package governance

import (
	"context"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/sirupsen/logrus"
)

// Rule outcomes.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
	StatusError   = "error"
)

const (
	warningMargin = 5.0
	sampleSize    = 5
)

type QualityStore interface {
	CountPatients(ctx context.Context) (int64, error)
	CountFailing(ctx context.Context, predicate string) (int64, error)
	FailingIDs(ctx context.Context, predicate string, limit int) ([]string, error)
}

type FailedRow struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type RuleResult struct {
	QualityRule
	Status     string      `json:"status"`
	PassRate   float64     `json:"passRate"`
	SQLLogic   string      `json:"sqlLogic"`
	FailedRows []FailedRow `json:"failedRows"`
}

type QualityChecker struct {
	store QualityStore
	rules []QualityRule
}

func NewQualityChecker(store QualityStore, set RuleSet) *QualityChecker {
	return &QualityChecker{store: store, rules: set.Rules}
}

// Evaluate runs every rule. A rule whose query fails is reported with
// StatusError rather than aborting the report.
func (c *QualityChecker) Evaluate(ctx context.Context) ([]RuleResult, error) {
	total, err := c.store.CountPatients(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]RuleResult, 0, len(c.rules))
	for _, rule := range c.rules {
		results = append(results, c.evaluate(ctx, rule, total))
	}
	return results, nil
}

func (c *QualityChecker) evaluate(ctx context.Context, rule QualityRule, total int64) RuleResult {
	res := RuleResult{
		QualityRule: rule,
		SQLLogic:    "SELECT id FROM patients WHERE " + rule.Predicate,
		FailedRows:  []FailedRow{},
	}

	failed, err := c.store.CountFailing(ctx, rule.Predicate)
	if err != nil {
		logger.WithFields(logrus.Fields{"rule": rule.ID}).WithError(err).Error("Quality rule query failed")
		res.Status = StatusError
		return res
	}

	res.PassRate = passRate(total, failed)
	res.Status = ruleStatus(res.PassRate, rule.Threshold)

	if failed > 0 {
		ids, err := c.store.FailingIDs(ctx, rule.Predicate, sampleSize)
		if err != nil {
			logger.WithFields(logrus.Fields{"rule": rule.ID}).WithError(err).Warn("Failed to sample violating rows")
		}
		for _, id := range ids {
			res.FailedRows = append(res.FailedRows, FailedRow{ID: id, Reason: rule.Description})
		}
	}
	return res
}

// passRate is the share of passing rows as a percentage truncated to one
// decimal. An empty table passes.
func passRate(total, failed int64) float64 {
	if total <= 0 {
		return 100
	}
	if failed > total {
		failed = total
	}
	return float64((total-failed)*1000/total) / 10
}

func ruleStatus(rate, threshold float64) string {
	switch {
	case rate >= threshold:
		return StatusPass
	case rate >= threshold-warningMargin:
		return StatusWarning
	default:
		return StatusFail
	}
}
