package ast

// AttrKind is the closed, finite enumeration of semantic attribute kinds.
// Dispatch is an exhaustive switch over this enum; a new attribute means a
// new constant, a catalog entry, and a handler arm.
type AttrKind uint16

const (
	AttrInvalid AttrKind = iota

	// Simple markers.
	AttrNoReturn
	AttrCold
	AttrHot
	AttrUnused
	AttrUsed
	AttrPacked
	AttrNoInline
	AttrAlwaysInline
	AttrWeak

	// Simple attributes with validated arguments.
	AttrDeprecated
	AttrAligned
	AttrConstructor
	AttrDestructor
	AttrEnumExtensibility

	// Parameter-index attributes.
	AttrNonNull
	AttrAllocSize
	AttrAllocAlign
	AttrFormat

	// Capability / thread-safety attributes.
	AttrCapability
	AttrScopedLockable
	AttrGuardedBy
	AttrPtGuardedBy
	AttrRequiresCapability
	AttrAcquireCapability
	AttrReleaseCapability
	AttrTryAcquireCapability
	AttrExcludes
	AttrAcquiredBefore
	AttrAcquiredAfter
	AttrLockReturned

	// Launch-geometry attributes.
	AttrReqdWorkGroupSize
	AttrWorkGroupSizeHint
	AttrMaxWorkGroupSize

	// Availability.
	AttrAvailability

	// Multiversioning.
	AttrTarget
	AttrTargetClones
	AttrCPUDispatch
	AttrCPUSpecific

	// Redeclaration-mergeable single-value attributes.
	AttrSection
	AttrCodeSeg
	AttrVisibility
	AttrCallConv

	// Hardware-synthesis resource layout.
	AttrRegister
	AttrMemory
	AttrBankWidth
	AttrNumBanks
	AttrMaxReplicates
	AttrKernel

	// Count relationship between fields.
	AttrCountedBy

	// Set-accumulating attributes.
	AttrNoBuiltin

	// Alias family.
	AttrAlias
	AttrWeakRef

	attrKindCount // keep last
)

// NumAttrKinds is the number of valid attribute kinds.
const NumAttrKinds = int(attrKindCount) - 1

func (k AttrKind) Valid() bool {
	return k > AttrInvalid && k < attrKindCount
}

func (k AttrKind) String() string {
	if spec, ok := LookupAttrKind(k); ok {
		return spec.Name
	}
	return "invalid"
}
