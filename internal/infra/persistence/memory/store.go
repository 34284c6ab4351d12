// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"studycore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Record aliases domain.Record for in-memory persistence operations.
	Record = domain.Record
	// Study aliases domain.Study.
	Study = domain.Study
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	sources map[int]Record
	studies map[int]Study
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Sources map[int]Record `json:"sources"`
	Studies map[int]Study  `json:"studies"`
}

func newMemoryState() memoryState {
	return memoryState{
		sources: make(map[int]Record),
		studies: make(map[int]Study),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Sources: make(map[int]Record, len(state.sources)),
		Studies: make(map[int]Study, len(state.studies)),
	}
	for k, v := range state.sources {
		s.Sources[k] = cloneSource(v)
	}
	for k, v := range state.studies {
		s.Studies[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Sources {
		state.sources[k] = cloneSource(v)
	}
	for k, v := range s.Studies {
		state.studies[k] = v
	}
	return state
}

// migrateSnapshot repairs referential damage in an imported snapshot: member
// rows whose parent row is gone are dropped, as are rows claiming a study
// that no longer exists.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Sources == nil {
		snapshot.Sources = map[int]Record{}
	}
	if snapshot.Studies == nil {
		snapshot.Studies = map[int]Study{}
	}
	sourceExists := func(key int) bool {
		_, ok := snapshot.Sources[key]
		return ok
	}
	studyExists := func(key int) bool {
		_, ok := snapshot.Studies[key]
		return ok
	}
	for key, src := range snapshot.Sources {
		if src.ParentSourceKey != 0 && !sourceExists(src.ParentSourceKey) {
			delete(snapshot.Sources, key)
			continue
		}
		if src.StudyKey != 0 && !studyExists(src.StudyKey) {
			delete(snapshot.Sources, key)
		}
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.sources {
		cloned.sources[k] = cloneSource(v)
	}
	for k, v := range s.studies {
		cloned.studies[k] = v
	}
	return cloned
}

// cloneSource relies on the record's flat-copy form: patterns and attributes
// deep-copied, no live pointers into hierarchy or context state.
func cloneSource(r Record) Record {
	return r.FlatCopy()
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListSources returns all source records, ordered by key.
func (v transactionView) ListSources() []Record {
	out := make([]Record, 0, len(v.state.sources))
	for _, r := range v.state.sources {
		out = append(out, cloneSource(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ListSourcesForStudy returns the records owned by one study, ordered by key.
func (v transactionView) ListSourcesForStudy(studyKey int) []Record {
	var out []Record
	for _, r := range v.state.sources {
		if r.StudyKey == studyKey {
			out = append(out, cloneSource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ListGroupMembers returns the member rows of a group parent, ordered by site
// number then key.
func (v transactionView) ListGroupMembers(parentKey int) []Record {
	var out []Record
	for _, r := range v.state.sources {
		if r.ParentSourceKey == parentKey {
			out = append(out, cloneSource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SiteNumber != out[j].SiteNumber {
			return out[i].SiteNumber < out[j].SiteNumber
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// FindSource retrieves a source record by key.
func (v transactionView) FindSource(key int) (Record, bool) {
	r, ok := v.state.sources[key]
	if !ok {
		return Record{}, false
	}
	return cloneSource(r), true
}

// ListStudies returns all studies, ordered by key.
func (v transactionView) ListStudies() []Study {
	out := make([]Study, 0, len(v.state.studies))
	for _, st := range v.state.studies {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FindStudy retrieves a study by key.
func (v transactionView) FindStudy(key int) (Study, bool) {
	st, ok := v.state.studies[key]
	return st, ok
}

// ruleView narrows a transaction view to the rule evaluation contract.
type ruleView struct {
	view TransactionView
}

func (r ruleView) ListSources() []Record        { return r.view.ListSources() }
func (r ruleView) ListSourcesForStudy(studyKey int) []Record {
	return r.view.ListSourcesForStudy(studyKey)
}
func (r ruleView) ListGroupMembers(parentKey int) []Record { return r.view.ListGroupMembers(parentKey) }
func (r ruleView) FindSource(key int) (Record, bool)       { return r.view.FindSource(key) }
func (r ruleView) FindStudy(key int) (Study, bool)         { return r.view.FindStudy(key) }

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, ruleView{view: view}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// PutSource creates or replaces a source row.
func (tx *transaction) PutSource(r Record) (Record, error) {
	stored := cloneSource(r)
	if before, ok := tx.state.sources[r.Key]; ok {
		tx.recordChange(Change{Entity: domain.EntitySource, Action: domain.ActionUpdate, Before: cloneSource(before), After: cloneSource(stored)})
	} else {
		tx.recordChange(Change{Entity: domain.EntitySource, Action: domain.ActionCreate, After: cloneSource(stored)})
	}
	tx.state.sources[r.Key] = stored
	return cloneSource(stored), nil
}

// DeleteSource removes a source row. Deleting an absent key is an error so a
// stale removed-member set surfaces instead of silently succeeding.
func (tx *transaction) DeleteSource(key int) error {
	before, ok := tx.state.sources[key]
	if !ok {
		return ErrNotFound{Entity: domain.EntitySource, Key: key}
	}
	delete(tx.state.sources, key)
	tx.recordChange(Change{Entity: domain.EntitySource, Action: domain.ActionDelete, Before: cloneSource(before)})
	return nil
}

// FindSource exposes source lookup within the transaction scope.
func (tx *transaction) FindSource(key int) (Record, bool) {
	r, ok := tx.state.sources[key]
	if !ok {
		return Record{}, false
	}
	return cloneSource(r), true
}

// PutStudy creates or replaces a study row.
func (tx *transaction) PutStudy(st Study) (Study, error) {
	if before, ok := tx.state.studies[st.Key]; ok {
		tx.recordChange(Change{Entity: domain.EntityStudy, Action: domain.ActionUpdate, Before: before, After: st})
	} else {
		tx.recordChange(Change{Entity: domain.EntityStudy, Action: domain.ActionCreate, After: st})
	}
	tx.state.studies[st.Key] = st
	return st, nil
}

// DeleteStudy removes a study and every source row it owns.
func (tx *transaction) DeleteStudy(key int) error {
	before, ok := tx.state.studies[key]
	if !ok {
		return ErrNotFound{Entity: domain.EntityStudy, Key: key}
	}
	delete(tx.state.studies, key)
	for sourceKey, src := range tx.state.sources {
		if src.StudyKey == key {
			delete(tx.state.sources, sourceKey)
			tx.recordChange(Change{Entity: domain.EntitySource, Action: domain.ActionDelete, Before: cloneSource(src)})
		}
	}
	tx.recordChange(Change{Entity: domain.EntityStudy, Action: domain.ActionDelete, Before: before})
	return nil
}

// FindStudy exposes study lookup within the transaction scope.
func (tx *transaction) FindStudy(key int) (Study, bool) {
	st, ok := tx.state.studies[key]
	return st, ok
}

// GetSource retrieves a committed source record by key.
func (s *Store) GetSource(key int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.sources[key]
	if !ok {
		return Record{}, false
	}
	return cloneSource(r), true
}

// ListSources returns all committed source records, ordered by key.
func (s *Store) ListSources() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListSources()
}

// ListSourcesForStudy returns the committed records owned by one study.
func (s *Store) ListSourcesForStudy(studyKey int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListSourcesForStudy(studyKey)
}

// GetStudy retrieves a committed study by key.
func (s *Store) GetStudy(key int) (Study, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.studies[key]
	return st, ok
}

// ListStudies returns all committed studies, ordered by key.
func (s *Store) ListStudies() []Study {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListStudies()
}

// ErrNotFound is returned when a keyed row is absent.
type ErrNotFound struct {
	Entity domain.EntityType
	Key    int
}

func (e ErrNotFound) Error() string {
	return string(e.Entity) + " not found"
}
