// Package target answers the capability questions the attribute engine asks
// about the active compilation target: does an attribute exist here, is a
// CPU or feature name valid, how do multiversioning target strings
// canonicalize. The engine never inspects triples itself.
package target

import (
	"sort"
	"strings"
)

// Info describes one compilation target. For offload compiles the host
// target carries the device target in Aux; an attribute is considered
// present when either side supports it.
type Info struct {
	Triple string
	Arch   string // "x86_64", "aarch64", "spir64_fpga", ...

	// features holds the attribute-capability gates this target supports
	// ("offload", "fpga", "multiversion", ...).
	features map[string]bool

	// Aux is the auxiliary target of an offload compilation, nil otherwise.
	Aux *Info
}

// New builds an Info from a triple, deriving the capability set from the
// architecture prefix.
func New(triple string) *Info {
	arch := triple
	if i := strings.IndexByte(triple, '-'); i >= 0 {
		arch = triple[:i]
	}
	info := &Info{Triple: triple, Arch: arch, features: map[string]bool{}}
	switch arch {
	case "x86_64", "i386", "i686":
		info.features["multiversion"] = true
	case "aarch64":
		info.features["multiversion"] = true
	case "spir64", "spir64_fpga", "spir64_gen":
		info.features["offload"] = true
		if arch == "spir64_fpga" {
			info.features["fpga"] = true
		}
	}
	return info
}

// WithAux attaches an auxiliary (device) target and returns the receiver.
func (i *Info) WithAux(aux *Info) *Info {
	i.Aux = aux
	return i
}

// WithFeature force-enables a capability gate; used by configuration and
// tests.
func (i *Info) WithFeature(name string) *Info {
	if i.features == nil {
		i.features = map[string]bool{}
	}
	i.features[name] = true
	return i
}

// Has reports whether the capability gate is supported by this target or
// its auxiliary target.
func (i *Info) Has(feature string) bool {
	if feature == "" {
		return true
	}
	if i == nil {
		return false
	}
	if i.features[feature] {
		return true
	}
	return i.Aux.Has(feature)
}

var x86CPUs = map[string]bool{
	"generic": true, "atom": true, "core2": true, "corei7": true,
	"nehalem": true, "westmere": true, "sandybridge": true,
	"ivybridge": true, "haswell": true, "broadwell": true,
	"skylake": true, "skylake-avx512": true, "cannonlake": true,
	"icelake-client": true, "icelake-server": true, "tigerlake": true,
	"sapphirerapids": true, "alderlake": true,
	"znver1": true, "znver2": true, "znver3": true, "znver4": true,
}

var x86Features = map[string]bool{
	"mmx": true, "sse": true, "sse2": true, "sse3": true, "ssse3": true,
	"sse4.1": true, "sse4.2": true, "popcnt": true, "aes": true,
	"avx": true, "avx2": true, "fma": true, "bmi": true, "bmi2": true,
	"avx512f": true, "avx512bw": true, "avx512dq": true, "avx512vl": true,
	"avx512vnni": true, "adx": true, "lzcnt": true, "movbe": true,
	"xsave": true, "f16c": true, "rdrnd": true, "sha": true,
}

var aarch64Features = map[string]bool{
	"neon": true, "sve": true, "sve2": true, "crypto": true, "crc": true,
	"dotprod": true, "fp16": true, "bf16": true, "i8mm": true,
	"memtag": true, "rng": true, "lse": true, "rdm": true,
}

// ValidCPUName reports whether the CPU name is known for this target.
func (i *Info) ValidCPUName(name string) bool {
	switch i.Arch {
	case "x86_64", "i386", "i686":
		return x86CPUs[strings.ToLower(name)]
	case "aarch64":
		// AArch64 multiversioning keys on features, not CPU models.
		return false
	}
	return false
}

// ValidFeatureName reports whether the feature name is known for this
// target.
func (i *Info) ValidFeatureName(name string) bool {
	name = strings.ToLower(name)
	switch i.Arch {
	case "x86_64", "i386", "i686":
		return x86Features[name]
	case "aarch64":
		return aarch64Features[name]
	}
	return false
}

// CanonicalTargetString normalizes one multiversioning target string for
// duplicate comparison: `arch=` prefixes are kept, feature lists are
// de-duplicated, sorted and joined with '+' so "sse4.2,avx" and
// "avx,sse4.2" collide.
func CanonicalTargetString(spec string) string {
	parts := strings.Split(spec, ",")
	arch := ""
	features := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "arch="); ok {
			arch = rest
			continue
		}
		p = strings.TrimPrefix(p, "+")
		if !seen[p] {
			seen[p] = true
			features = append(features, p)
		}
	}
	sort.Strings(features)
	out := strings.Join(features, "+")
	if arch != "" {
		if out != "" {
			return "arch=" + arch + "+" + out
		}
		return "arch=" + arch
	}
	return out
}
