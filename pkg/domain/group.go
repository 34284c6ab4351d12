package domain

import "sort"

// Hierarchy manager. A parent record owns an ordered, keyed collection of
// member records. Added/removed tracking feeds the persistence coordinator;
// the ordered view is cached and returned as a copy. Every mutating operation
// serialises on the group mutex because UI callbacks and background import
// workers may append discovered stations to the same group.

// AddOrReplaceMember inserts or overwrites a member by key. No-op when the
// record is not a parent or the member's parent key does not match. A
// genuinely new key is dropped from the removed set when pending there,
// otherwise recorded in the added set.
func (r *Record) AddOrReplaceMember(member *Record) {
	if !r.IsParent || member == nil || member.ParentSourceKey != r.Key {
		return
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[member.Key]; !exists {
		if _, pending := g.removed[member.Key]; pending {
			delete(g.removed, member.Key)
		} else {
			g.added[member.Key] = struct{}{}
		}
	}
	g.members[member.Key] = member
	g.view = nil
}

// RemoveMember removes a member by key. A member that was never persisted is
// simply dropped from the added set; otherwise the key is recorded in the
// removed set so the next save issues its delete.
func (r *Record) RemoveMember(member *Record) {
	if !r.IsParent || member == nil {
		return
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[member.Key]; !exists {
		return
	}
	delete(g.members, member.Key)
	if _, pending := g.added[member.Key]; pending {
		delete(g.added, member.Key)
	} else {
		g.removed[member.Key] = struct{}{}
	}
	g.view = nil
}

// Member returns the member with the given key, nil when absent.
func (r *Record) Member(key int) *Record {
	if !r.IsParent {
		return nil
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[key]
}

// Members returns the member records ordered by key. The view is cached
// until the next mutation and the returned slice is a copy, so callers
// cannot corrupt the member set.
func (r *Record) Members() []*Record {
	if !r.IsParent {
		return nil
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.view == nil {
		g.view = make([]*Record, 0, len(g.members))
		for _, m := range g.members {
			g.view = append(g.view, m)
		}
		sort.Slice(g.view, func(i, j int) bool {
			return g.view[i].Key < g.view[j].Key
		})
	}
	return append([]*Record(nil), g.view...)
}

// MemberCount returns the number of members.
func (r *Record) MemberCount() int {
	if !r.IsParent {
		return 0
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// NextSiteNumber returns one more than the current maximum member site
// number, or zero for an empty group. UI flows use it to suggest the next
// site to add.
func (r *Record) NextSiteNumber() int {
	if !r.IsParent {
		return 0
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.members) == 0 {
		return 0
	}
	maxSite := -1
	for _, m := range g.members {
		if m.SiteNumber > maxSite {
			maxSite = m.SiteNumber
		}
	}
	return maxSite + 1
}

// RemovedMemberKeys returns the keys whose deletes are pending, sorted.
func (r *Record) RemovedMemberKeys() []int {
	if !r.IsParent {
		return nil
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]int, 0, len(g.removed))
	for k := range g.removed {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// AddedMemberKeys returns the keys added since the last save, sorted.
func (r *Record) AddedMemberKeys() []int {
	if !r.IsParent {
		return nil
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]int, 0, len(g.added))
	for k := range g.added {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (r *Record) memberAdded(key int) bool {
	if !r.IsParent {
		return false
	}
	g := r.group
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.added[key]
	return ok
}
