package domain

import (
	"context"

	"studycore/pkg/domain/attr"
)

// ReplicateOptions carries the optional collaborators replication may need.
type ReplicateOptions struct {
	// Patterns supplies stored pattern data lazily.
	Patterns PatternLoader
}

// Replicate produces a new, locked record operating on a different channel
// while reusing the source's computed coverage. The result carries
// OriginalSourceKey so exports can recover provenance; ERP and antenna are
// reset to placeholders pending derivation by the study engine.
func Replicate(ctx context.Context, src *Record, newChannel int, opts ReplicateOptions) (*Record, error) {
	if !src.ctx.HasStudy() {
		return nil, illegalOp("replicate", "record %d has no owning study context", src.Key)
	}
	if src.OriginalSourceKey != 0 {
		return nil, illegalOp("replicate", "record %d is already a replication", src.Key)
	}
	if src.ParentSourceKey != 0 {
		return nil, illegalOp("replicate", "record %d is a group member; replication must start from a top-level record", src.Key)
	}
	if src.Service.Digital && newChannel == src.Channel {
		return nil, illegalOp("replicate", "record %d already operates digitally on channel %d", src.Key, newChannel)
	}
	if src.IsParent {
		return replicateGroup(ctx, src, newChannel, opts)
	}
	return replicateFlat(ctx, src, newChannel, 0, opts)
}

// replicateFlat replicates one record. parentKey wires the result into a
// destination group when replicating a distributed operation.
func replicateFlat(ctx context.Context, src *Record, newChannel, parentKey int, opts ReplicateOptions) (*Record, error) {
	service := src.Service
	if !service.Digital {
		equivalent, ok := service.DigitalEquivalent()
		if !ok {
			return nil, illegalOp("replicate", "service %s has no digital equivalent", service.Code)
		}
		service = equivalent
	}
	key, err := src.ctx.NextKey()
	if err != nil {
		return nil, err
	}
	out := NewRecordWithIdentity(src.ctx, RecordIdentity{
		Key:               key,
		FacilityID:        src.FacilityID,
		Service:           service,
		Country:           src.Country,
		Locked:            true,
		OriginalSourceKey: src.Key,
		ParentSourceKey:   parentKey,
	})

	fields := replicationFields(src)
	fields.Channel = newChannel
	if !src.Service.Digital {
		// Digital substitution invalidates the analog carrier offset and
		// requires the digital service's default mask.
		fields.FrequencyOffset = OffsetNone
		fields.EmissionMask = DefaultEmissionMask(service)
		fields.SignalType = DefaultSignalType(service)
	}
	if src.attributes.Has(attr.KeyBaseline) {
		// Baseline records are the legacy exception: their vertical pattern
		// geometry survives the channel change.
		vertical, err := resolvePattern(ctx, src, PatternVertical, opts.Patterns)
		if err != nil {
			return nil, err
		}
		matrix, err := resolvePattern(ctx, src, PatternMatrix, opts.Patterns)
		if err != nil {
			return nil, err
		}
		fields.VerticalPattern = vertical.Copy()
		fields.MatrixPattern = matrix.Copy()
	}
	if err := out.ApplyFields(fields); err != nil {
		return nil, err
	}
	return out, nil
}

// replicationFields builds the field payload for a replication: all coverage
// parameters carried over, horizontal pattern cleared, ERP and antenna reset
// to pending-derivation placeholders, vertical geometry dropped unless the
// baseline exception applies.
func replicationFields(src *Record) RecordFields {
	return RecordFields{
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
		PeakERP:            ERPPendingDerivation,
		AntennaID:          0,
		ServiceAreaMode:    src.ServiceAreaMode,
		ServiceAreaArg:     src.ServiceAreaArg,
		ServiceAreaCL:      src.ServiceAreaCL,
		DTSMaximumDistance: src.DTSMaximumDistance,
		TimeDelay:          src.TimeDelay,
		SiteNumber:         src.SiteNumber,
		Attributes:         src.attributes,
	}
}

// replicateGroup replicates a distributed operation. The reference facility
// is derived, not replicated: its channel is a synthetic contour-projection
// input independent of the group's operating channel. Every transmitting
// site replicates onto the new channel under the new group's key.
func replicateGroup(ctx context.Context, src *Record, newChannel int, opts ReplicateOptions) (*Record, error) {
	service := src.Service
	if !service.Digital {
		equivalent, ok := service.DigitalEquivalent()
		if !ok {
			return nil, illegalOp("replicate", "service %s has no digital equivalent", service.Code)
		}
		service = equivalent
	}
	key, err := src.ctx.NextKey()
	if err != nil {
		return nil, err
	}
	group := NewRecordWithIdentity(src.ctx, RecordIdentity{
		Key:               key,
		FacilityID:        src.FacilityID,
		Service:           service,
		Country:           src.Country,
		Locked:            true,
		OriginalSourceKey: src.Key,
		IsParent:          true,
	})
	copyDisplayFields(group, src)
	group.Channel = newChannel
	group.DTSMaximumDistance = src.DTSMaximumDistance

	for _, m := range src.Members() {
		var member *Record
		if m.SiteNumber == SiteNumberReference {
			member, err = deriveFlat(ctx, m, DeriveOptions{
				FacilityID: m.FacilityID,
				Service:    m.Service,
				Country:    m.Country,
				Locked:     true,
				Patterns:   opts.Patterns,
			}, src.ctx, group.Key, SiteNumberReference)
		} else {
			member, err = replicateMember(ctx, m, newChannel, group.Key, opts)
		}
		if err != nil {
			return nil, err
		}
		group.AddOrReplaceMember(member)
	}
	return group, nil
}

// replicateMember replicates one transmitting site of a group. The member's
// own parent linkage is ignored; the destination group's key takes its place.
func replicateMember(ctx context.Context, m *Record, newChannel, parentKey int, opts ReplicateOptions) (*Record, error) {
	detached := *m
	detached.ParentSourceKey = 0
	detached.OriginalSourceKey = 0
	return replicateFlat(ctx, &detached, newChannel, parentKey, opts)
}
