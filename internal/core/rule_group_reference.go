package core

import (
	"context"
	"fmt"
	"strconv"

	"studycore/pkg/domain"
)

// NewGroupReferenceRule returns the default in-transaction rule enforcing the
// shape of distributed groups: every parent carries exactly one reference
// facility at site zero plus at least one transmitting site.
func NewGroupReferenceRule() domain.Rule {
	return groupReferenceRule{}
}

type groupReferenceRule struct{}

func (groupReferenceRule) Name() string { return "group_reference_facility" }

func (groupReferenceRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, src := range view.ListSources() {
		if !src.IsParent {
			continue
		}
		members := view.ListGroupMembers(src.Key)
		if len(members) == 0 {
			res.Violations = append(res.Violations, groupViolation(src.Key, fmt.Sprintf("group %d has no member sites", src.Key)))
			continue
		}
		references, sites := 0, 0
		for _, m := range members {
			if m.SiteNumber == domain.SiteNumberReference {
				references++
			} else {
				sites++
			}
		}
		if references != 1 {
			res.Violations = append(res.Violations, groupViolation(src.Key, fmt.Sprintf("group %d has %d reference facilities, want exactly one", src.Key, references)))
		}
		if sites == 0 {
			// a just-promoted group holds only its reference facility until
			// sites are added, so this cannot block
			v := groupViolation(src.Key, fmt.Sprintf("group %d has no transmitting sites yet", src.Key))
			v.Severity = domain.SeverityWarn
			res.Violations = append(res.Violations, v)
		}
	}
	return res, nil
}

func groupViolation(key int, message string) domain.Violation {
	return domain.Violation{
		Rule:     "group_reference_facility",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntitySource,
		EntityID: strconv.Itoa(key),
	}
}
