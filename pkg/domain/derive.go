package domain

import "context"

// DeriveOptions names the controlled identity changes a derivation applies.
type DeriveOptions struct {
	// Study is the destination context. Nil keeps the source's context.
	Study      *StudyContext
	FacilityID int
	Service    ServiceType
	Country    Country
	Locked     bool
	// ClearPrimaryIDs forces the primary-data back-reference to be dropped
	// even when identity is otherwise unchanged.
	ClearPrimaryIDs bool
	// Patterns supplies stored pattern data lazily when a slot is referenced
	// but not resident in memory.
	Patterns PatternLoader
}

// Derive produces a new record copying the source's operational state under
// new identity. The source is never mutated; every refusal returns an
// IllegalOperationError and no record.
func Derive(ctx context.Context, src *Record, opts DeriveOptions) (*Record, error) {
	if src.OriginalSourceKey != 0 {
		return nil, illegalOp("derive", "record %d is a replication and cannot seed a derivation", src.Key)
	}
	if src.IsParent && !opts.Service.DTS {
		return nil, illegalOp("derive", "group record %d cannot derive to non-DTS service %s", src.Key, opts.Service.Code)
	}
	if src.Kind() == GroupReferenceFacility && opts.Service.DTS {
		return nil, illegalOp("derive", "reference facility %d cannot derive to a DTS-capable service", src.Key)
	}
	if src.Service.DTS && opts.Service.DTS && src.ParentSourceKey != 0 {
		return nil, illegalOp("derive", "record %d is already a group member; nested groups are not supported", src.Key)
	}
	if opts.Locked && !src.Locked {
		return nil, illegalOp("derive", "record %d is unlocked; locking a derivation would misrepresent provenance", src.Key)
	}

	dctx := opts.Study
	if dctx == nil {
		dctx = src.ctx
	}

	if opts.Service.DTS {
		if src.IsParent {
			return deriveGroup(ctx, src, opts, dctx)
		}
		return promoteToGroup(ctx, src, opts, dctx)
	}
	return deriveFlat(ctx, src, opts, dctx, 0, 0)
}

// deriveFlat copies the source's operational fields onto a fresh identity.
// parentKey and siteNumber wire the result into a destination group when the
// caller is building a hierarchy.
func deriveFlat(ctx context.Context, src *Record, opts DeriveOptions, dctx *StudyContext, parentKey, siteNumber int) (*Record, error) {
	key, err := dctx.NextKey()
	if err != nil {
		return nil, err
	}
	id := RecordIdentity{
		Key:             key,
		FacilityID:      opts.FacilityID,
		Service:         opts.Service,
		Country:         opts.Country,
		Locked:          opts.Locked,
		ParentSourceKey: parentKey,
	}
	if keepsPrimaryReference(src, opts, dctx) {
		id.ExtDbKey = src.ExtDbKey
		id.ExtRecordID = src.ExtRecordID
		id.UserRecordID = src.UserRecordID
	}
	out := NewRecordWithIdentity(dctx, id)
	if err := copyOperationalFields(ctx, out, src, opts.Patterns); err != nil {
		return nil, err
	}
	out.SiteNumber = siteNumber
	return out, nil
}

// keepsPrimaryReference decides whether the derivation may keep the claim
// that it mirrors a specific external row. Any identity change, or a context
// change, invalidates the claim.
func keepsPrimaryReference(src *Record, opts DeriveOptions, dctx *StudyContext) bool {
	if opts.ClearPrimaryIDs {
		return false
	}
	if dctx != src.ctx {
		return false
	}
	return opts.FacilityID == src.FacilityID &&
		opts.Service.Key == src.Service.Key &&
		opts.Country.Key == src.Country.Key
}

// promoteToGroup handles non-DTS to DTS derivation: a new group record takes
// the source's display fields, and the source becomes its synthesized
// reference facility via the ordinary field copy.
func promoteToGroup(ctx context.Context, src *Record, opts DeriveOptions, dctx *StudyContext) (*Record, error) {
	key, err := dctx.NextKey()
	if err != nil {
		return nil, err
	}
	group := NewRecordWithIdentity(dctx, RecordIdentity{
		Key:        key,
		FacilityID: opts.FacilityID,
		Service:    opts.Service,
		Country:    opts.Country,
		Locked:     opts.Locked,
		IsParent:   true,
	})
	copyDisplayFields(group, src)

	memberOpts := opts
	memberOpts.Study = nil
	member, err := deriveFlat(ctx, src, memberOpts, dctx, group.Key, SiteNumberReference)
	if err != nil {
		return nil, err
	}
	group.AddOrReplaceMember(member)
	return group, nil
}

// deriveGroup handles DTS to DTS derivation: every member derives into the
// new group, the reference facility verbatim under its own service, lock and
// country, transmitting sites under the new ones. Site numbers and relative
// order are preserved.
func deriveGroup(ctx context.Context, src *Record, opts DeriveOptions, dctx *StudyContext) (*Record, error) {
	key, err := dctx.NextKey()
	if err != nil {
		return nil, err
	}
	group := NewRecordWithIdentity(dctx, RecordIdentity{
		Key:        key,
		FacilityID: opts.FacilityID,
		Service:    opts.Service,
		Country:    opts.Country,
		Locked:     opts.Locked,
		IsParent:   true,
	})
	if err := copyOperationalFields(ctx, group, src, opts.Patterns); err != nil {
		return nil, err
	}
	group.SiteNumber = SiteNumberReference

	for _, m := range src.Members() {
		memberOpts := opts
		memberOpts.Study = nil
		memberOpts.FacilityID = opts.FacilityID
		if m.SiteNumber == SiteNumberReference {
			memberOpts.Service = m.Service
			memberOpts.Country = m.Country
			memberOpts.Locked = m.Locked
		}
		derived, err := deriveFlat(ctx, m, memberOpts, dctx, group.Key, m.SiteNumber)
		if err != nil {
			return nil, err
		}
		group.AddOrReplaceMember(derived)
	}
	return group, nil
}

// copyOperationalFields copies every mutable field from src, deep-copying
// pattern data with the changed flag forced: a copied pattern is new content
// owned by a different record even when byte-identical.
func copyOperationalFields(ctx context.Context, dst, src *Record, loader PatternLoader) error {
	horizontal, err := resolvePattern(ctx, src, PatternHorizontal, loader)
	if err != nil {
		return err
	}
	vertical, err := resolvePattern(ctx, src, PatternVertical, loader)
	if err != nil {
		return err
	}
	matrix, err := resolvePattern(ctx, src, PatternMatrix, loader)
	if err != nil {
		return err
	}
	return dst.ApplyFields(RecordFields{
		CallSign:           src.CallSign,
		Channel:            src.Channel,
		City:               src.City,
		State:              src.State,
		Zone:               src.Zone,
		Status:             src.Status,
		FileNumber:         src.FileNumber,
		SignalType:         src.SignalType,
		FrequencyOffset:    src.FrequencyOffset,
		EmissionMask:       src.EmissionMask,
		Latitude:           src.Latitude,
		Longitude:          src.Longitude,
		HeightAMSL:         src.HeightAMSL,
		OverallHAAT:        src.OverallHAAT,
		PeakERP:            src.PeakERP,
		AntennaID:          src.AntennaID,
		HorizontalPattern:  horizontal.Copy(),
		VerticalPattern:    vertical.Copy(),
		MatrixPattern:      matrix.Copy(),
		ServiceAreaMode:    src.ServiceAreaMode,
		ServiceAreaArg:     src.ServiceAreaArg,
		ServiceAreaCL:      src.ServiceAreaCL,
		DTSMaximumDistance: src.DTSMaximumDistance,
		TimeDelay:          src.TimeDelay,
		SiteNumber:         src.SiteNumber,
		Attributes:         src.attributes,
	})
}

// copyDisplayFields copies only the identity-adjacent display fields a group
// record carries; a group never transmits, so it takes no engineering data.
func copyDisplayFields(dst, src *Record) {
	dst.CallSign = src.CallSign
	dst.Channel = src.Channel
	dst.City = src.City
	dst.State = src.State
	dst.Zone = src.Zone
	dst.Status = src.Status
	dst.FileNumber = src.FileNumber
	if src.SignalType != SignalTypeNone || !dst.Service.Digital {
		dst.SignalType = src.SignalType
	}
	dst.Latitude = src.Latitude
	dst.Longitude = src.Longitude
}

// resolvePattern returns the resident pattern for a slot, or loads it from
// the pattern subsystem when the record was persisted and a loader is
// available.
func resolvePattern(ctx context.Context, r *Record, slot PatternType, loader PatternLoader) (*Pattern, error) {
	if p := r.Pattern(slot); p != nil {
		return p, nil
	}
	if loader == nil || !r.WasPersisted() {
		return nil, nil
	}
	switch slot {
	case PatternHorizontal:
		return loader.LoadHorizontal(ctx, r.Key)
	case PatternVertical:
		return loader.LoadVertical(ctx, r.Key)
	case PatternMatrix:
		return loader.LoadMatrix(ctx, r.Key)
	default:
		return nil, nil
	}
}
