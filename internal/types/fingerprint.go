// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable 32-byte structural hash of t, memoized on
// the Type value itself. internal/mono uses this to probe the
// InstantiationCache without repeatedly walking full type trees, and
// internal/buildid folds it into object-module fingerprints.
func (t *Type) Fingerprint() [32]byte {
	if t.fingerprinted {
		return t.fingerprint
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for a bad key length, and nil is
		// always valid; this can't happen.
		panic(err)
	}
	writeFingerprint(h, t)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	t.fingerprint = out
	t.fingerprinted = true
	return out
}

func writeFingerprint(h interface{ Write([]byte) (int, error) }, t *Type) {
	var buf [9]byte
	tag := func(b byte) {
		buf[0] = b
		h.Write(buf[:1])
	}
	if t == nil {
		tag(0xFF)
		return
	}
	tag(byte(t.Kind))
	switch t.Kind {
	case Primitive:
		buf[0] = byte(t.Prim)
		h.Write(buf[:1])
	case Struct, Enum, TraitObject:
		binary.LittleEndian.PutUint64(buf[:8], uint64(t.DefID))
		h.Write(buf[:8])
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(t.TypeArgs)))
		h.Write(buf[:4])
		for _, a := range t.TypeArgs {
			writeFingerprint(h, a)
		}
	case Function:
		if t.IsAsync {
			tag(1)
		} else {
			tag(0)
		}
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(t.Params)))
		h.Write(buf[:4])
		for _, p := range t.Params {
			writeFingerprint(h, p)
		}
		writeFingerprint(h, t.Result)
	case Reference, RawPointer:
		tag(byte(t.Mut))
		writeFingerprint(h, t.Inner)
	case Array:
		binary.LittleEndian.PutUint64(buf[:8], uint64(t.Len))
		h.Write(buf[:8])
		writeFingerprint(h, t.Inner)
	case Slice:
		writeFingerprint(h, t.Inner)
	case Tuple:
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(t.Items)))
		h.Write(buf[:4])
		for _, item := range t.Items {
			writeFingerprint(h, item)
		}
	case Generic:
		h.Write([]byte(fmt.Sprintf("%p", t.Param)))
	}
}
