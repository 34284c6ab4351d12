package domain

import "testing"

func TestAddMemberTracksAddition(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	added := group.AddedMemberKeys()
	if len(added) != 3 {
		t.Fatalf("expected 3 added members, got %v", added)
	}
	if len(group.RemovedMemberKeys()) != 0 {
		t.Fatalf("expected no removals")
	}
}

func TestAddMemberRejectsForeignParentKey(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	stray := newTestRecord(t, ctx, ServiceKeyDTV)
	group.AddOrReplaceMember(stray)
	if group.Member(stray.Key) != nil {
		t.Fatalf("member with mismatched parent key was accepted")
	}
}

func TestNonParentGroupOpsAreNoOps(t *testing.T) {
	ctx := testContext()
	r := newTestRecord(t, ctx, ServiceKeyDTV)
	r.AddOrReplaceMember(r)
	if r.MemberCount() != 0 || r.Members() != nil {
		t.Fatalf("non-parent record accepted members")
	}
	if r.NextSiteNumber() != 0 {
		t.Fatalf("non-parent next site must be 0")
	}
}

func TestRemoveNeverPersistedMemberLeavesNoTrace(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	victim := group.Members()[2]
	group.RemoveMember(victim)
	if len(group.RemovedMemberKeys()) != 0 {
		t.Fatalf("never-persisted member must not enter the removed set")
	}
	if group.memberAdded(victim.Key) {
		t.Fatalf("removed member still in added set")
	}
}

func TestRemovePersistedMemberRecordsDeletion(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	group.MarkLoaded()
	victim := group.Members()[2]
	group.RemoveMember(victim)
	removed := group.RemovedMemberKeys()
	if len(removed) != 1 || removed[0] != victim.Key {
		t.Fatalf("expected removed set [%d], got %v", victim.Key, removed)
	}

	// Re-adding the same key cancels the pending delete without counting
	// as a fresh addition.
	group.AddOrReplaceMember(victim)
	if len(group.RemovedMemberKeys()) != 0 {
		t.Fatalf("re-add did not cancel the pending delete")
	}
	if group.memberAdded(victim.Key) {
		t.Fatalf("re-added persisted member must not count as added")
	}
}

func TestMembersOrderedByKey(t *testing.T) {
	ctx := testContext()
	dts := mustService(t, ServiceKeyDTV)
	key, _ := ctx.NextKey()
	group := NewRecordWithIdentity(ctx, RecordIdentity{
		Key: key, FacilityID: 1, Service: dts, Country: mustCountry(t, CountryKeyUS), IsParent: true,
	})
	// Site numbers deliberately descend while keys ascend; the view must
	// follow the keys.
	for _, site := range []int{2, 1, 0} {
		group.AddOrReplaceMember(newTestMember(t, ctx, group, site))
	}
	members := group.Members()
	wantSites := []int{2, 1, 0}
	for i, m := range members {
		if i > 0 && members[i-1].Key >= m.Key {
			t.Fatalf("view not ordered by key: %d then %d", members[i-1].Key, m.Key)
		}
		if m.SiteNumber != wantSites[i] {
			t.Fatalf("position %d holds site %d, want %d", i, m.SiteNumber, wantSites[i])
		}
	}
}

func TestMembersViewIsACopy(t *testing.T) {
	ctx := testContext()
	group := buildTestGroup(t, ctx)
	view := group.Members()
	view[0] = nil
	if group.Members()[0] == nil {
		t.Fatalf("caller mutation leaked into the cached view")
	}
}

func TestNextSiteNumber(t *testing.T) {
	ctx := testContext()
	dts := mustService(t, ServiceKeyDTV)
	key, _ := ctx.NextKey()
	group := NewRecordWithIdentity(ctx, RecordIdentity{
		Key: key, FacilityID: 1, Service: dts, Country: mustCountry(t, CountryKeyUS), IsParent: true,
	})
	if group.NextSiteNumber() != 0 {
		t.Fatalf("empty group should suggest site 0")
	}
	group.AddOrReplaceMember(newTestMember(t, ctx, group, 0))
	group.AddOrReplaceMember(newTestMember(t, ctx, group, 3))
	if got := group.NextSiteNumber(); got != 4 {
		t.Fatalf("expected next site 4, got %d", got)
	}
}
