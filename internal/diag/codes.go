package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Structural: argument count/shape problems. Always errors; the
	// attribute is dropped and marked invalid.
	ArgInfo          Code = 1000
	ArgCountTooFew   Code = 1001
	ArgCountTooMany  Code = 1002
	ArgNotIdentifier Code = 1003
	ArgNotString     Code = 1004
	ArgNotExpression Code = 1005
	ArgNotType       Code = 1006
	ArgStringNotASCII Code = 1007
	// ArgIdentifierQuoted carries a fix-it: the identifier should have been
	// a string literal (or the other way around).
	ArgIdentifierQuoted Code = 1008

	// Semantic-value: constant folding and range validation.
	ValInfo           Code = 2000
	ValNotConstant    Code = 2001
	ValTooWide        Code = 2002
	ValNotPowerOfTwo  Code = 2003
	ValOutOfRange     Code = 2004
	ValNotPositive    Code = 2005
	ValNotNonNegative Code = 2006
	ValBadVersion     Code = 2007
	ValBadParamIndex  Code = 2008
	ValParamIndexThis Code = 2009
	ValParamNotPointer Code = 2010
	ValParamNotInteger Code = 2011
	ValReturnNotPointer Code = 2012
	ValBadEnumerator  Code = 2013

	// Applicability: subject kind, language mode, target gating.
	AplInfo                Code = 3000
	AplWrongSubject        Code = 3001
	AplUnsupportedTarget   Code = 3002
	AplUnsupportedLanguage Code = 3003
	AplIgnoredUnknown      Code = 3004
	AplCheckDisabled       Code = 3005

	// Conflict: co-resident or cross-declaration attribute clashes.
	CflInfo                 Code = 4000
	CflMutualExclusion      Code = 4001
	CflDuplicateMismatch    Code = 4002
	CflRedeclMismatch       Code = 4003
	CflMultiversionMix      Code = 4004
	CflDuplicateTarget      Code = 4005
	CflRegisterBanking      Code = 4006
	CflWildcardNotAlone     Code = 4007

	// Attribute-kind-specific semantic findings.
	SemInfo                    Code = 5000
	SemCapabilityExprInvalid   Code = 5001
	SemCapabilityTypeMissing   Code = 5002
	SemNoEnclosingCapability   Code = 5003
	SemGeometryReqExceedsMax   Code = 5004
	SemWeakrefWithoutAlias     Code = 5005
	SemKernelOnlyAttr          Code = 5006
	SemCountedByNotFlexible    Code = 5007
	SemCountedByNoField        Code = 5008
	SemCountedByBadFieldType   Code = 5009
	SemAvailabilityVersionOrder Code = 5010
	SemAvailabilityBadPlatform Code = 5011
	SemMultiversionNoDefault   Code = 5012
	SemUnknownCPU              Code = 5013
	SemUnknownFeature          Code = 5014
	SemFormatArchetype         Code = 5015
	SemNoBuiltinUnknown        Code = 5016
	SemDeprecatedUsage         Code = 5017
	SemUnavailableUsage        Code = 5018
	SemForbiddenType           Code = 5019
	SemAliasSelf               Code = 5020
	SemAliasUndefined          Code = 5021

	// Driver and I/O.
	IOInfo          Code = 7000
	IOLoadFileError Code = 7001
	IOBadScenario   Code = 7002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown diagnostic",

	ArgInfo:             "argument information",
	ArgCountTooFew:      "attribute takes more arguments than supplied",
	ArgCountTooMany:     "attribute takes fewer arguments than supplied",
	ArgNotIdentifier:    "attribute argument must be an identifier",
	ArgNotString:        "attribute argument must be a string literal",
	ArgNotExpression:    "attribute argument must be an expression",
	ArgNotType:          "attribute argument must be a type",
	ArgStringNotASCII:   "attribute argument string must be ASCII",
	ArgIdentifierQuoted: "attribute argument has the wrong literal form",

	ValInfo:             "value information",
	ValNotConstant:      "attribute argument is not an integer constant",
	ValTooWide:          "attribute argument does not fit in the required bit width",
	ValNotPowerOfTwo:    "attribute argument must be a power of two",
	ValOutOfRange:       "attribute argument is out of range",
	ValNotPositive:      "attribute argument must be strictly positive",
	ValNotNonNegative:   "attribute argument must be non-negative",
	ValBadVersion:       "malformed version tuple",
	ValBadParamIndex:    "parameter index is out of bounds",
	ValParamIndexThis:   "parameter index may not name the implicit object parameter",
	ValParamNotPointer:  "referenced parameter must have pointer type",
	ValParamNotInteger:  "referenced parameter must have integer type",
	ValReturnNotPointer: "return type must be a pointer type",
	ValBadEnumerator:    "unknown enumerator argument",

	AplInfo:                "applicability information",
	AplWrongSubject:        "attribute does not apply to this kind of declaration",
	AplUnsupportedTarget:   "attribute is not supported on the current target",
	AplUnsupportedLanguage: "attribute is not available in the current language mode",
	AplIgnoredUnknown:      "unknown attribute ignored",
	AplCheckDisabled:       "attribute check disabled by configuration",

	CflInfo:              "conflict information",
	CflMutualExclusion:   "attribute conflicts with a co-resident attribute",
	CflDuplicateMismatch: "attribute restated with different arguments",
	CflRedeclMismatch:    "attribute conflicts with a previous declaration",
	CflMultiversionMix:   "multiversioning mechanisms may not be combined",
	CflDuplicateTarget:   "multiversioning target duplicates a previous one",
	CflRegisterBanking:   "register placement conflicts with memory banking",
	CflWildcardNotAlone:  "wildcard entry must be the only argument",

	SemInfo:                     "semantic information",
	SemCapabilityExprInvalid:    "expression is not a valid capability expression",
	SemCapabilityTypeMissing:    "type is not marked as a capability",
	SemNoEnclosingCapability:    "enclosing type must be a capability",
	SemGeometryReqExceedsMax:    "required size exceeds declared maximum size",
	SemWeakrefWithoutAlias:      "weakref declaration must also carry an alias",
	SemKernelOnlyAttr:           "attribute requires a kernel declaration",
	SemCountedByNotFlexible:     "counted field must be a flexible-array-like member",
	SemCountedByNoField:         "count field does not exist in the enclosing aggregate",
	SemCountedByBadFieldType:    "count field must have non-boolean integer type",
	SemAvailabilityVersionOrder: "availability versions must be ordered",
	SemAvailabilityBadPlatform:  "unknown availability platform",
	SemMultiversionNoDefault:    "multiversioned function needs a default variant",
	SemUnknownCPU:               "unknown CPU name for this target",
	SemUnknownFeature:           "unknown target feature",
	SemFormatArchetype:          "unknown format archetype",
	SemNoBuiltinUnknown:         "unknown builtin name",
	SemDeprecatedUsage:          "usage of deprecated declaration",
	SemUnavailableUsage:         "usage of unavailable declaration",
	SemForbiddenType:            "use of forbidden type",
	SemAliasSelf:                "declaration cannot alias itself",
	SemAliasUndefined:           "alias target is not defined",

	IOInfo:          "I/O information",
	IOLoadFileError: "I/O load file error",
	IOBadScenario:   "malformed scenario file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ARG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("VAL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("APL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CFL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
