// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mono turns a generic function template plus a concrete set of
// type arguments into a monomorphized, fully concrete function body: one
// copy per distinct instantiation, cached by a structural key so that
// calling the same generic function with the same type arguments from many
// call sites produces exactly one body.
package mono

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/meftunca/vex/internal/types"
)

// InstantiationKey identifies one (generic function, concrete type
// arguments) pair. Two calls that resolve to the same key share one
// generated function.
type InstantiationKey struct {
	Func types.DefID
	Args [32]byte
}

// argsFingerprint folds an ordered list of concrete type arguments into a
// single digest, reusing Type.Fingerprint so that structurally identical
// argument lists always hash the same regardless of which *Type pointers
// produced them.
func argsFingerprint(args []*types.Type) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(args)))
	h.Write(lenBuf[:])
	for _, a := range args {
		fp := a.Fingerprint()
		h.Write(fp[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func keyFor(fn types.DefID, args []*types.Type) InstantiationKey {
	return InstantiationKey{Func: fn, Args: argsFingerprint(args)}
}
