package core

import "studycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Record             = domain.Record
	RecordFields       = domain.RecordFields
	Study              = domain.Study
	StudyContext       = domain.StudyContext
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
)

const (
	EntitySource = domain.EntitySource
	EntityStudy  = domain.EntityStudy
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}
