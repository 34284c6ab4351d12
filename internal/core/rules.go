package core

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewGroupReferenceRule())
	engine.Register(NewParentLinkageRule())
	engine.Register(NewLockIntegrityRule())
	return engine
}
