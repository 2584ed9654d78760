package ast

import (
	"slices"
	"strings"
)

// SubjectMask describes the set of declaration categories an attribute may
// be applied to.
type SubjectMask uint16

const (
	SubjNone SubjectMask = 0
	// SubjFunction covers function-like declarations: ordinary functions,
	// methods, and variables of function-pointer type.
	SubjFunction SubjectMask = 1 << iota
	SubjVariable
	SubjField
	SubjType // typedefs and tag declarations
	SubjRecord
	SubjEnum
	SubjParam
	SubjNamespace
	SubjUsing
)

func (m SubjectMask) Describe() string {
	names := make([]string, 0, 4)
	add := func(bit SubjectMask, name string) {
		if m&bit != 0 {
			names = append(names, name)
		}
	}
	add(SubjFunction, "functions")
	add(SubjVariable, "variables")
	add(SubjField, "fields")
	add(SubjType, "types")
	add(SubjRecord, "records")
	add(SubjEnum, "enums")
	add(SubjParam, "parameters")
	add(SubjNamespace, "namespaces")
	add(SubjUsing, "using declarations")
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}

// LangMask gates attributes by language mode.
type LangMask uint8

const (
	LangC LangMask = 1 << iota
	LangCXX
	LangObjC
	LangOpenCL
	LangSYCL

	LangAll = LangC | LangCXX | LangObjC | LangOpenCL | LangSYCL
)

// UnboundedArgs marks a variadic trailing argument list.
const UnboundedArgs = -1

// AttrSpec describes one attribute spelling: its semantic kind, where it
// may appear, its argument schema, and its language/target gating.
type AttrSpec struct {
	Kind     AttrKind
	Name     string // canonical spelling
	Subjects SubjectMask
	MinArgs  int
	MaxArgs  int // UnboundedArgs for a variadic tail
	Langs    LangMask
	// Feature is the target-capability gate; empty means every target.
	// The subject checker treats an absent feature like an unrecognized
	// attribute (warn and ignore), not an error.
	Feature string
	// CC carries the spelling-derived payload for calling-convention
	// spellings, which all share AttrCallConv.
	CC CallConv
}

// Allows reports whether the attribute can be applied to the given subject
// category.
func (spec AttrSpec) Allows(subject SubjectMask) bool {
	return spec.Subjects&subject != 0
}

// AllowsLang reports whether the attribute exists in the language mode.
func (spec AttrSpec) AllowsLang(lang LangMask) bool {
	return spec.Langs&lang != 0
}

// Variadic reports whether the trailing argument position repeats.
func (spec AttrSpec) Variadic() bool {
	return spec.MaxArgs == UnboundedArgs
}

var attrRegistry = map[string]AttrSpec{
	// Simple markers.
	"noreturn":      {Kind: AttrNoReturn, Name: "noreturn", Subjects: SubjFunction, Langs: LangAll},
	"cold":          {Kind: AttrCold, Name: "cold", Subjects: SubjFunction, Langs: LangAll},
	"hot":           {Kind: AttrHot, Name: "hot", Subjects: SubjFunction, Langs: LangAll},
	"unused":        {Kind: AttrUnused, Name: "unused", Subjects: SubjFunction | SubjVariable | SubjField | SubjType | SubjParam, Langs: LangAll},
	"used":          {Kind: AttrUsed, Name: "used", Subjects: SubjFunction | SubjVariable, Langs: LangAll},
	"packed":        {Kind: AttrPacked, Name: "packed", Subjects: SubjRecord | SubjField, Langs: LangAll},
	"noinline":      {Kind: AttrNoInline, Name: "noinline", Subjects: SubjFunction, Langs: LangAll},
	"always_inline": {Kind: AttrAlwaysInline, Name: "always_inline", Subjects: SubjFunction, Langs: LangAll},
	"weak":          {Kind: AttrWeak, Name: "weak", Subjects: SubjFunction | SubjVariable, Langs: LangAll},

	// Simple attributes with arguments.
	"deprecated":         {Kind: AttrDeprecated, Name: "deprecated", Subjects: SubjFunction | SubjVariable | SubjField | SubjType | SubjRecord | SubjEnum, MaxArgs: 1, Langs: LangAll},
	"aligned":            {Kind: AttrAligned, Name: "aligned", Subjects: SubjVariable | SubjField | SubjType | SubjRecord, MaxArgs: 1, Langs: LangAll},
	"constructor":        {Kind: AttrConstructor, Name: "constructor", Subjects: SubjFunction, MaxArgs: 1, Langs: LangAll},
	"destructor":         {Kind: AttrDestructor, Name: "destructor", Subjects: SubjFunction, MaxArgs: 1, Langs: LangAll},
	"enum_extensibility": {Kind: AttrEnumExtensibility, Name: "enum_extensibility", Subjects: SubjEnum, MinArgs: 1, MaxArgs: 1, Langs: LangAll},

	// Parameter-index attributes.
	"nonnull":     {Kind: AttrNonNull, Name: "nonnull", Subjects: SubjFunction, MaxArgs: UnboundedArgs, Langs: LangAll},
	"alloc_size":  {Kind: AttrAllocSize, Name: "alloc_size", Subjects: SubjFunction, MinArgs: 1, MaxArgs: 2, Langs: LangAll},
	"alloc_align": {Kind: AttrAllocAlign, Name: "alloc_align", Subjects: SubjFunction, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"format":      {Kind: AttrFormat, Name: "format", Subjects: SubjFunction, MinArgs: 3, MaxArgs: 3, Langs: LangAll},

	// Capability / thread-safety attributes.
	"capability":               {Kind: AttrCapability, Name: "capability", Subjects: SubjRecord | SubjType, MaxArgs: 1, Langs: LangAll},
	"lockable":                 {Kind: AttrCapability, Name: "capability", Subjects: SubjRecord | SubjType, MaxArgs: 1, Langs: LangAll},
	"scoped_lockable":          {Kind: AttrScopedLockable, Name: "scoped_lockable", Subjects: SubjRecord, Langs: LangAll},
	"guarded_by":               {Kind: AttrGuardedBy, Name: "guarded_by", Subjects: SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"pt_guarded_by":            {Kind: AttrPtGuardedBy, Name: "pt_guarded_by", Subjects: SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"requires_capability":      {Kind: AttrRequiresCapability, Name: "requires_capability", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"exclusive_locks_required": {Kind: AttrRequiresCapability, Name: "requires_capability", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"acquire_capability":       {Kind: AttrAcquireCapability, Name: "acquire_capability", Subjects: SubjFunction, MaxArgs: UnboundedArgs, Langs: LangAll},
	"exclusive_lock_function":  {Kind: AttrAcquireCapability, Name: "acquire_capability", Subjects: SubjFunction, MaxArgs: UnboundedArgs, Langs: LangAll},
	"release_capability":       {Kind: AttrReleaseCapability, Name: "release_capability", Subjects: SubjFunction, MaxArgs: UnboundedArgs, Langs: LangAll},
	"unlock_function":          {Kind: AttrReleaseCapability, Name: "release_capability", Subjects: SubjFunction, MaxArgs: UnboundedArgs, Langs: LangAll},
	"try_acquire_capability":   {Kind: AttrTryAcquireCapability, Name: "try_acquire_capability", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"excludes":                 {Kind: AttrExcludes, Name: "excludes", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"locks_excluded":           {Kind: AttrExcludes, Name: "excludes", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"acquired_before":          {Kind: AttrAcquiredBefore, Name: "acquired_before", Subjects: SubjField | SubjVariable, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"acquired_after":           {Kind: AttrAcquiredAfter, Name: "acquired_after", Subjects: SubjField | SubjVariable, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},
	"lock_returned":            {Kind: AttrLockReturned, Name: "lock_returned", Subjects: SubjFunction, MinArgs: 1, MaxArgs: 1, Langs: LangAll},

	// Launch geometry (offload targets only).
	"reqd_work_group_size": {Kind: AttrReqdWorkGroupSize, Name: "reqd_work_group_size", Subjects: SubjFunction, MinArgs: 1, MaxArgs: 3, Langs: LangOpenCL | LangSYCL | LangCXX, Feature: "offload"},
	"work_group_size_hint": {Kind: AttrWorkGroupSizeHint, Name: "work_group_size_hint", Subjects: SubjFunction, MinArgs: 3, MaxArgs: 3, Langs: LangOpenCL | LangSYCL | LangCXX, Feature: "offload"},
	"max_work_group_size":  {Kind: AttrMaxWorkGroupSize, Name: "max_work_group_size", Subjects: SubjFunction, MinArgs: 3, MaxArgs: 3, Langs: LangOpenCL | LangSYCL | LangCXX, Feature: "offload"},

	// Availability.
	"availability": {Kind: AttrAvailability, Name: "availability", Subjects: SubjFunction | SubjVariable | SubjField | SubjType | SubjRecord | SubjEnum, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},

	// Multiversioning.
	"target":        {Kind: AttrTarget, Name: "target", Subjects: SubjFunction, MinArgs: 1, MaxArgs: 1, Langs: LangAll, Feature: "multiversion"},
	"target_clones": {Kind: AttrTargetClones, Name: "target_clones", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll, Feature: "multiversion"},
	"cpu_dispatch":  {Kind: AttrCPUDispatch, Name: "cpu_dispatch", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll, Feature: "multiversion"},
	"cpu_specific":  {Kind: AttrCPUSpecific, Name: "cpu_specific", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll, Feature: "multiversion"},

	// Redeclaration-mergeable single-value attributes.
	"section":    {Kind: AttrSection, Name: "section", Subjects: SubjFunction | SubjVariable, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"code_seg":   {Kind: AttrCodeSeg, Name: "code_seg", Subjects: SubjFunction | SubjRecord, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"visibility": {Kind: AttrVisibility, Name: "visibility", Subjects: SubjFunction | SubjVariable | SubjType | SubjRecord, MinArgs: 1, MaxArgs: 1, Langs: LangAll},

	"cdecl":         {Kind: AttrCallConv, Name: "cdecl", Subjects: SubjFunction, Langs: LangAll, CC: CCCdecl},
	"stdcall":       {Kind: AttrCallConv, Name: "stdcall", Subjects: SubjFunction, Langs: LangAll, CC: CCStdcall},
	"fastcall":      {Kind: AttrCallConv, Name: "fastcall", Subjects: SubjFunction, Langs: LangAll, CC: CCFastcall},
	"vectorcall":    {Kind: AttrCallConv, Name: "vectorcall", Subjects: SubjFunction, Langs: LangAll, CC: CCVectorcall},
	"regcall":       {Kind: AttrCallConv, Name: "regcall", Subjects: SubjFunction, Langs: LangAll, CC: CCRegcall},
	"preserve_most": {Kind: AttrCallConv, Name: "preserve_most", Subjects: SubjFunction, Langs: LangAll, CC: CCPreserveMost},

	// Hardware-synthesis resource layout (FPGA-style targets).
	"register":       {Kind: AttrRegister, Name: "register", Subjects: SubjVariable | SubjField, Langs: LangAll, Feature: "fpga"},
	"memory":         {Kind: AttrMemory, Name: "memory", Subjects: SubjVariable | SubjField, MaxArgs: 1, Langs: LangAll, Feature: "fpga"},
	"bank_width":     {Kind: AttrBankWidth, Name: "bank_width", Subjects: SubjVariable | SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll, Feature: "fpga"},
	"numbanks":       {Kind: AttrNumBanks, Name: "numbanks", Subjects: SubjVariable | SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll, Feature: "fpga"},
	"max_replicates": {Kind: AttrMaxReplicates, Name: "max_replicates", Subjects: SubjVariable | SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll, Feature: "fpga"},
	"kernel":         {Kind: AttrKernel, Name: "kernel", Subjects: SubjFunction, Langs: LangAll, Feature: "fpga"},

	// Count relationship between fields.
	"counted_by": {Kind: AttrCountedBy, Name: "counted_by", Subjects: SubjField, MinArgs: 1, MaxArgs: 1, Langs: LangAll},

	// Set-accumulating attributes.
	"no_builtin": {Kind: AttrNoBuiltin, Name: "no_builtin", Subjects: SubjFunction, MinArgs: 1, MaxArgs: UnboundedArgs, Langs: LangAll},

	// Alias family.
	"alias":   {Kind: AttrAlias, Name: "alias", Subjects: SubjFunction | SubjVariable, MinArgs: 1, MaxArgs: 1, Langs: LangAll},
	"weakref": {Kind: AttrWeakRef, Name: "weakref", Subjects: SubjFunction | SubjVariable, MaxArgs: 1, Langs: LangAll},
}

// kindIndex maps each semantic kind to its canonical spec.
var kindIndex = func() map[AttrKind]AttrSpec {
	out := make(map[AttrKind]AttrSpec, len(attrRegistry))
	for name, spec := range attrRegistry {
		if name != spec.Name && spec.Kind != AttrCallConv {
			continue // alias spelling, canonical entry wins
		}
		if prev, ok := out[spec.Kind]; ok && prev.Name <= spec.Name {
			continue
		}
		out[spec.Kind] = spec
	}
	return out
}()

// LookupAttr returns metadata for the given spelling, decoration stripped
// and case folded.
func LookupAttr(name string) (AttrSpec, bool) {
	if name == "" {
		return AttrSpec{}, false
	}
	if len(name) >= 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		name = name[2 : len(name)-2]
	}
	spec, ok := attrRegistry[strings.ToLower(name)]
	return spec, ok
}

// LookupAttrKind returns the canonical spec for a semantic kind.
func LookupAttrKind(kind AttrKind) (AttrSpec, bool) {
	spec, ok := kindIndex[kind]
	return spec, ok
}

// AttrSpecs returns a stable slice of all registered spellings sorted by
// spelling.
func AttrSpecs() []AttrSpec {
	names := make([]string, 0, len(attrRegistry))
	for name := range attrRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]AttrSpec, 0, len(names))
	for _, name := range names {
		result = append(result, attrRegistry[name])
	}
	return result
}

// SpellingCount returns the number of registered spellings (aliases
// included).
func SpellingCount() int {
	return len(attrRegistry)
}
