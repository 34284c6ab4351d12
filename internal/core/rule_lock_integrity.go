package core

import (
	"context"
	"fmt"
	"strconv"

	"studycore/pkg/domain"
)

// NewLockIntegrityRule returns the rule guarding locked baseline rows. A
// locked source is the frozen output of a derive or replicate and must not be
// edited in place; hierarchy bookkeeping fields are the only tolerated delta.
func NewLockIntegrityRule() domain.Rule {
	return lockIntegrityRule{}
}

type lockIntegrityRule struct{}

func (lockIntegrityRule) Name() string { return "lock_integrity" }

func (lockIntegrityRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntitySource || change.Action != domain.ActionUpdate {
			continue
		}
		before, okBefore := change.Before.(domain.Record)
		after, okAfter := change.After.(domain.Record)
		if !okBefore || !okAfter {
			continue
		}
		if !before.Locked {
			continue
		}
		if !after.Locked {
			res.Violations = append(res.Violations, lockViolation(after.Key, fmt.Sprintf("source %d cannot be unlocked", after.Key)))
			continue
		}
		if lockedPayloadChanged(before, after) {
			res.Violations = append(res.Violations, lockViolation(after.Key, fmt.Sprintf("locked source %d cannot be edited", after.Key)))
		}
	}
	return res, nil
}

// lockedPayloadChanged compares the engineering payload of two locked rows,
// ignoring the hierarchy bookkeeping a group save is allowed to touch.
func lockedPayloadChanged(before, after domain.Record) bool {
	normalize := func(r domain.Record) domain.Record {
		cp := r.FlatCopy()
		cp.ParentSourceKey = 0
		cp.IsParent = false
		cp.SiteNumber = 0
		cp.HorizontalPattern = nil
		cp.VerticalPattern = nil
		cp.MatrixPattern = nil
		return cp
	}
	a, b := normalize(before), normalize(after)
	if !patternsEqual(before, after) {
		return true
	}
	aJSON, errA := a.MarshalJSON()
	bJSON, errB := b.MarshalJSON()
	if errA != nil || errB != nil {
		return true
	}
	return string(aJSON) != string(bJSON)
}

func patternsEqual(before, after domain.Record) bool {
	return before.HorizontalPattern.Equal(after.HorizontalPattern) &&
		before.VerticalPattern.Equal(after.VerticalPattern) &&
		before.MatrixPattern.Equal(after.MatrixPattern)
}

func lockViolation(key int, message string) domain.Violation {
	return domain.Violation{
		Rule:     "lock_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntitySource,
		EntityID: strconv.Itoa(key),
	}
}
