package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"studycore/internal/infra/persistence/memory"
	"studycore/pkg/domain"
)

// Service exposes higher-level transactional operations over a persistent
// store: study lifecycle, source loading and saving, and the derive and
// replicate flows.
type Service struct {
	store    domain.PersistentStore
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	audit    AuditRecorder
	clock    Clock
	patterns domain.PatternLoader
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		clock:  ClockFunc(func() time.Time { return time.Now().UTC() }),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// CreateStudy persists a new study. A zero key is assigned the next free one.
func (s *Service) CreateStudy(ctx context.Context, study Study) (Study, Result, error) {
	var created Study
	var res Result
	err := s.observe(ctx, "create_study", func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if study.Key == 0 {
				study.Key = nextStudyKey(tx.Snapshot())
			}
			if _, ok := tx.FindStudy(study.Key); ok {
				return fmt.Errorf("study %d already exists", study.Key)
			}
			if study.SourceKeySeq == 0 {
				study.SourceKeySeq = 1
			}
			created, err = tx.PutStudy(study)
			return err
		})
		return strconv.Itoa(study.Key), err
	})
	return created, res, err
}

func nextStudyKey(view domain.TransactionView) int {
	next := 1
	for _, study := range view.ListStudies() {
		if study.Key >= next {
			next = study.Key + 1
		}
	}
	return next
}

// GetStudy returns a persisted study by key.
func (s *Service) GetStudy(key int) (Study, bool) {
	return s.store.GetStudy(key)
}

// ListStudies returns all persisted studies.
func (s *Service) ListStudies() []Study {
	return s.store.ListStudies()
}

// DeleteStudy removes a study and every source row it owns.
func (s *Service) DeleteStudy(ctx context.Context, key int) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_study", func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteStudy(key)
		})
		return strconv.Itoa(key), err
	})
	return res, err
}

// OpenStudyContext builds the editing context for a persisted study: its
// channel range and a sequential key generator resuming at the study's
// persisted sequence position.
func (s *Service) OpenStudyContext(studyKey int) (*StudyContext, error) {
	study, ok := s.store.GetStudy(studyKey)
	if !ok {
		return nil, fmt.Errorf("study %d not found", studyKey)
	}
	seq := study.SourceKeySeq
	if seq == 0 {
		seq = 1
	}
	return domain.NewStudyContext(study, domain.NewSequentialKeys(seq)), nil
}

// LoadSource materializes a persisted source under the study's editing
// context. Group parents come back with their member hierarchy attached and
// the whole tree marked loaded.
func (s *Service) LoadSource(ctx context.Context, studyKey, sourceKey int) (*Record, error) {
	sctx, err := s.OpenStudyContext(studyKey)
	if err != nil {
		return nil, err
	}
	var rec *Record
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		row, ok := view.FindSource(sourceKey)
		if !ok {
			return fmt.Errorf("source %d not found", sourceKey)
		}
		if row.StudyKey != studyKey {
			return fmt.Errorf("source %d does not belong to study %d", sourceKey, studyKey)
		}
		rec = materialize(view, row, sctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// materialize rebuilds a live record from its flat row, attaching context and
// hierarchy before establishing the loaded snapshot.
func materialize(view domain.TransactionView, row Record, sctx *StudyContext) *Record {
	rec := row
	rec.Rehydrate(sctx)
	if rec.IsParent {
		for _, memberRow := range view.ListGroupMembers(rec.Key) {
			member := memberRow
			member.AttachContext(sctx)
			rec.AddOrReplaceMember(&member)
		}
	}
	rec.MarkLoaded()
	return &rec
}

// SaveSource persists a record's pending changes atomically and, on success,
// promotes the in-memory state to the new persisted snapshot. The owning
// study's key sequence advances alongside so allocated keys are never reused.
func (s *Service) SaveSource(ctx context.Context, rec *Record) (Result, error) {
	if rec == nil {
		return Result{}, fmt.Errorf("nil record")
	}
	var res Result
	err := s.observe(ctx, "save_source", func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if err := rec.Save(tx); err != nil {
				return err
			}
			return syncStudySequence(tx, rec.Context())
		})
		return strconv.Itoa(rec.Key), err
	})
	if err != nil {
		return res, err
	}
	rec.CommitSaved()
	return res, nil
}

// syncStudySequence writes the context key generator's position back to the
// owning study row so the sequence survives the session.
func syncStudySequence(tx domain.Transaction, sctx *StudyContext) error {
	if !sctx.HasStudy() {
		return nil
	}
	seq, ok := sctx.Keys.(*domain.SequentialKeys)
	if !ok {
		return nil
	}
	study, found := tx.FindStudy(sctx.StudyKey)
	if !found {
		return fmt.Errorf("study %d not found", sctx.StudyKey)
	}
	if study.SourceKeySeq >= seq.Peek() {
		return nil
	}
	study.SourceKeySeq = seq.Peek()
	_, err := tx.PutStudy(study)
	return err
}

// DeleteSource removes a source row. Deleting a group parent removes its
// member rows in the same transaction.
func (s *Service) DeleteSource(ctx context.Context, key int) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_source", func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			row, ok := tx.FindSource(key)
			if !ok {
				return memory.ErrNotFound{Entity: EntitySource, Key: key}
			}
			if row.IsParent {
				for _, member := range tx.Snapshot().ListGroupMembers(key) {
					if err := tx.DeleteSource(member.Key); err != nil {
						return err
					}
				}
			}
			return tx.DeleteSource(key)
		})
		return strconv.Itoa(key), err
	})
	return res, err
}

// DeriveSource loads a source, derives a new record from it under the given
// identity options, and persists the result in one transaction. The derived
// record is returned live and marked loaded.
func (s *Service) DeriveSource(ctx context.Context, studyKey, sourceKey int, opts domain.DeriveOptions) (*Record, Result, error) {
	src, err := s.LoadSource(ctx, studyKey, sourceKey)
	if err != nil {
		return nil, Result{}, err
	}
	if opts.Patterns == nil {
		opts.Patterns = s.patterns
	}
	var derived *Record
	var res Result
	err = s.observe(ctx, "derive_source", func(ctx context.Context) (string, error) {
		var err error
		derived, err = domain.Derive(ctx, src, opts)
		if err != nil {
			return strconv.Itoa(sourceKey), err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if err := derived.Save(tx); err != nil {
				return err
			}
			return syncStudySequence(tx, derived.Context())
		})
		return strconv.Itoa(derived.Key), err
	})
	if err != nil {
		return nil, res, err
	}
	derived.CommitSaved()
	return derived, res, nil
}

// ReplicateSource loads a source and persists its replication onto a new
// channel. The replicated record is returned live and marked loaded.
func (s *Service) ReplicateSource(ctx context.Context, studyKey, sourceKey, newChannel int) (*Record, Result, error) {
	src, err := s.LoadSource(ctx, studyKey, sourceKey)
	if err != nil {
		return nil, Result{}, err
	}
	var replicated *Record
	var res Result
	err = s.observe(ctx, "replicate_source", func(ctx context.Context) (string, error) {
		var err error
		replicated, err = domain.Replicate(ctx, src, newChannel, domain.ReplicateOptions{Patterns: s.patterns})
		if err != nil {
			return strconv.Itoa(sourceKey), err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if err := replicated.Save(tx); err != nil {
				return err
			}
			return syncStudySequence(tx, replicated.Context())
		})
		return strconv.Itoa(replicated.Key), err
	})
	if err != nil {
		return nil, res, err
	}
	replicated.CommitSaved()
	return replicated, res, nil
}

// ValidateStudy runs record validation over every top-level source in a study
// and returns the collected findings keyed by source.
func (s *Service) ValidateStudy(ctx context.Context, studyKey int) (map[int][]domain.ValidationMessage, error) {
	sctx, err := s.OpenStudyContext(studyKey)
	if err != nil {
		return nil, err
	}
	findings := make(map[int][]domain.ValidationMessage)
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		for _, row := range view.ListSourcesForStudy(studyKey) {
			if row.ParentSourceKey != 0 {
				continue
			}
			rec := materialize(view, row, sctx)
			log := &domain.ErrorLog{}
			if !rec.IsDataValid(log) {
				findings[rec.Key] = log.Messages()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}
