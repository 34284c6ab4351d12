package core

import (
	"context"
	"fmt"
	"strconv"

	"studycore/pkg/domain"
)

// NewParentLinkageRule returns the rule validating hierarchy links: member
// rows must point at an existing parent row flagged as a parent, and parents
// must never link upward themselves.
func NewParentLinkageRule() domain.Rule {
	return parentLinkageRule{}
}

type parentLinkageRule struct{}

func (parentLinkageRule) Name() string { return "parent_linkage" }

func (parentLinkageRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, src := range view.ListSources() {
		if src.IsParent && src.ParentSourceKey != 0 {
			res.Violations = append(res.Violations, linkageViolation(src.Key, fmt.Sprintf("source %d is a parent but links to parent %d", src.Key, src.ParentSourceKey)))
			continue
		}
		if src.ParentSourceKey == 0 {
			continue
		}
		if src.ParentSourceKey == src.Key {
			res.Violations = append(res.Violations, linkageViolation(src.Key, fmt.Sprintf("source %d references itself as parent", src.Key)))
			continue
		}
		parent, ok := view.FindSource(src.ParentSourceKey)
		if !ok {
			res.Violations = append(res.Violations, linkageViolation(src.Key, fmt.Sprintf("source %d references missing parent %d", src.Key, src.ParentSourceKey)))
			continue
		}
		if !parent.IsParent {
			res.Violations = append(res.Violations, linkageViolation(src.Key, fmt.Sprintf("source %d parent %d is not a group parent", src.Key, parent.Key)))
		}
		if parent.StudyKey != src.StudyKey {
			res.Violations = append(res.Violations, linkageViolation(src.Key, fmt.Sprintf("source %d and parent %d belong to different studies", src.Key, parent.Key)))
		}
	}
	return res, nil
}

func linkageViolation(key int, message string) domain.Violation {
	return domain.Violation{
		Rule:     "parent_linkage",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntitySource,
		EntityID: strconv.Itoa(key),
	}
}
