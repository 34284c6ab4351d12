package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Records cross the boundary as flat
// values: hierarchy is expressed only through ParentSourceKey links.
type Transaction interface {
	Snapshot() TransactionView
	PutSource(Record) (Record, error)
	DeleteSource(key int) error
	FindSource(key int) (Record, bool)
	PutStudy(Study) (Study, error)
	DeleteStudy(key int) error
	FindStudy(key int) (Study, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListSources() []Record
	ListSourcesForStudy(studyKey int) []Record
	ListGroupMembers(parentKey int) []Record
	FindSource(key int) (Record, bool)
	ListStudies() []Study
	FindStudy(key int) (Study, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSource(key int) (Record, bool)
	ListSources() []Record
	ListSourcesForStudy(studyKey int) []Record
	GetStudy(key int) (Study, bool)
	ListStudies() []Study
}
