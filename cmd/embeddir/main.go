// Package main is the embeddir generator. It is meant to be run by go generate
// in the package that wants to embed a directory:
//
//	//go:generate go run github.com/CageChen/anydir/cmd/embeddir web
//
// It writes zz_embed_<identifier>.go declaring DIR_<IDENTIFIER>, an
// anydir.CtDir holding the directory as it is when the binary is built, and
// registers it under "<import path>:web". anydir.New(anydir.KindCt, "web")
// finds it as long as no other package in the binary embeds "web" too.
//
// go generate expands $VAR itself, so literals referencing PACKAGE_DIR or
// MODULE_ROOT spell the dollar sign as ${DOLLAR}:
//
//	//go:generate go run github.com/CageChen/anydir/cmd/embeddir ${DOLLAR}PACKAGE_DIR/assets
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/CageChen/anydir/internal/embedgen"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("embeddir: ")

	pkg := flag.String("pkg", os.Getenv("GOPACKAGE"), "Package name of the generated file")
	key := flag.String("key", "", "Registry key (defaults to IMPORTPATH:PATH)")
	importPath := flag.String("import", "", "Import path of the package (defaults to the path derived from go.mod)")
	noRegister := flag.Bool("no-register", false, "Do not register the directory with anydir.Register")
	dir := flag.String("dir", "", "Package directory (defaults to the working directory)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: embeddir [flags] PATH\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	packageDir := *dir
	if packageDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Failed to get working directory: %v", err)
		}

		packageDir = wd
	}

	result, err := embedgen.Generate(embedgen.Options{
		Literal:    flag.Arg(0),
		Package:    *pkg,
		PackageDir: packageDir,
		Key:        *key,
		ImportPath: *importPath,
		NoRegister: *noRegister,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	out := filepath.Join(packageDir, result.FileName)
	if err := os.WriteFile(out, result.Source, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}

	log.Printf("%s -> %s (%s)", flag.Arg(0), result.FileName, result.Identifier)
}
