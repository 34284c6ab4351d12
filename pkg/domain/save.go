package domain

// Save writes the record's pending changes into the transaction. Nothing is
// written when the record is unchanged against its persisted snapshot.
//
// For a group parent the write ordering is fixed: removed members are deleted
// first, then changed members are written, then the parent itself. A store
// failure aborts mid-sequence and the transaction is expected to roll back;
// in-memory tracking stays intact so the save can be retried.
func (r *Record) Save(tx Transaction) error {
	if !r.IsDataChanged() {
		return nil
	}
	if r.IsParent && r.group != nil {
		for _, key := range r.RemovedMemberKeys() {
			if err := tx.DeleteSource(key); err != nil {
				return err
			}
		}
		for _, m := range r.Members() {
			if !m.IsDataChanged() {
				continue
			}
			if _, err := tx.PutSource(m.flatCopy()); err != nil {
				return err
			}
		}
	}
	if _, err := tx.PutSource(r.flatCopy()); err != nil {
		return err
	}
	return nil
}

// CommitSaved acknowledges a committed save: the current state becomes the
// persisted snapshot and all change tracking resets. Callers invoke it only
// after the enclosing transaction committed; calling it after a rollback
// would silently discard the pending changes.
func (r *Record) CommitSaved() {
	r.MarkLoaded()
}
