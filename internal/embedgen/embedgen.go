// Package embedgen writes the Go source that embeds a directory into a binary
// at build time and exposes it as an anydir.CtDir.
package embedgen

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
)

// Variables always defined when expanding a path literal.
const (
	PackageDirVar = "PACKAGE_DIR"
	ModuleRootVar = "MODULE_ROOT"
)

var (
	// ErrUndefinedVariable is returned if a path literal references an
	// environment variable that is not set.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrNotDir is returned if a path literal does not name a directory.
	ErrNotDir = errors.New("not a directory")

	// ErrOutsidePackage is returned if a path literal names a directory
	// outside of the package directory, which //go:embed cannot reach.
	ErrOutsidePackage = errors.New("directory outside of package")

	// ErrCollision is returned if the file for a literal already exists and
	// was not generated for that literal. Distinct literals may sanitize to
	// the same identifier.
	ErrCollision = errors.New("generated file collision")
)

const generatedPrefix = "// Code generated by embeddir from "

// Options describes one embedded directory.
type Options struct {
	// Literal is the directory path as written by the user. It may reference
	// environment variables.
	Literal string

	// Package is the name of the package the source is written for.
	Package string

	// PackageDir is the directory of that package. Relative literals are
	// resolved against it.
	PackageDir string

	// Key is the key the directory is registered under. Defaults to
	// "<ImportPath>:<Literal>".
	Key string

	// ImportPath is the import path of the package. Defaults to the path
	// derived from the go.mod file of the enclosing module.
	ImportPath string

	// NoRegister skips registration with anydir.Register.
	NoRegister bool

	// LookupEnv resolves environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Result is the generated source.
type Result struct {
	Identifier string
	FileName   string
	Source     []byte
}

// Identifier returns the name of the variable holding the embedded directory
// for literal: "DIR_" followed by literal with ASCII letters and digits
// uppercased and every other character replaced by an underscore.
func Identifier(literal string) string {
	var b strings.Builder

	b.WriteString("DIR_")

	for _, r := range literal {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}

// FileName returns the name of the file generated for literal. Generating the
// same literal twice in a package writes the same file.
func FileName(literal string) string {
	return "zz_embed_" + strings.ToLower(Identifier(literal)) + ".go"
}

// Expand replaces $VAR and ${VAR} references in literal. PACKAGE_DIR and
// MODULE_ROOT are always defined; any other variable must be set.
func Expand(literal, packageDir string, lookupEnv func(string) (string, bool)) (string, error) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	var undefined []string

	expanded := os.Expand(literal, func(name string) string {
		switch name {
		case PackageDirVar:
			return packageDir
		case ModuleRootVar:
			root, err := moduleRoot(packageDir)
			if err != nil {
				undefined = append(undefined, name)
			}

			return root
		}

		value, ok := lookupEnv(name)
		if !ok {
			undefined = append(undefined, name)
		}

		return value
	})

	if len(undefined) > 0 {
		return "", errors.Wrapf(ErrUndefinedVariable, "expand %q: %s", literal, strings.Join(undefined, ", "))
	}

	return expanded, nil
}

// Resolve checks that path names a readable directory inside packageDir and
// returns it as a slash separated path relative to packageDir.
func Resolve(path, packageDir string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(packageDir, path)
	}

	path = filepath.Clean(path)

	rel, err := filepath.Rel(filepath.Clean(packageDir), path)
	if err != nil {
		return "", errors.Wrapf(ErrOutsidePackage, "%s", path)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsidePackage, "%s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "stat")
	}

	if !info.IsDir() {
		return "", errors.Wrapf(ErrNotDir, "%s", path)
	}

	if _, err := os.ReadDir(path); err != nil {
		return "", errors.Wrap(err, "read")
	}

	return filepath.ToSlash(rel), nil
}

// Generate writes the source embedding the directory described by opts.
func Generate(opts Options) (Result, error) {
	if opts.Package == "" {
		return Result{}, errors.New("package name required")
	}

	expanded, err := Expand(opts.Literal, opts.PackageDir, opts.LookupEnv)
	if err != nil {
		return Result{}, err
	}

	root, err := Resolve(expanded, opts.PackageDir)
	if err != nil {
		return Result{}, errors.Wrapf(err, "embed %q", opts.Literal)
	}

	fileName := FileName(opts.Literal)

	if err := checkExisting(filepath.Join(opts.PackageDir, fileName), opts.Literal); err != nil {
		return Result{}, err
	}

	patterns, err := embedPatterns(root, opts.PackageDir, fileName)
	if err != nil {
		return Result{}, errors.Wrapf(err, "embed %q", opts.Literal)
	}

	key := opts.Key
	if key == "" && !opts.NoRegister {
		importPath := opts.ImportPath
		if importPath == "" {
			importPath, err = ImportPath(opts.PackageDir)
			if err != nil {
				return Result{}, err
			}
		}

		key = importPath + ":" + opts.Literal
	}

	ident := Identifier(opts.Literal)

	var buf bytes.Buffer

	err = sourceTemplate.Execute(&buf, templateData{
		Package:    opts.Package,
		Literal:    opts.Literal,
		Identifier: ident,
		FSName:     "fs" + ident,
		Patterns:   strings.Join(patterns, " "),
		Root:       root,
		Key:        key,
		Register:   !opts.NoRegister,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "execute template")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return Result{}, errors.Wrap(err, "format source")
	}

	return Result{Identifier: ident, FileName: fileName, Source: src}, nil
}

// embedPatterns returns the //go:embed patterns for root. A pattern may not be
// ".", so the package directory itself is embedded child by child, leaving out
// the generated file.
func embedPatterns(root, packageDir, fileName string) ([]string, error) {
	if root != "." {
		return []string{embedPattern(root)}, nil
	}

	entries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, errors.Wrap(err, "read package dir")
	}

	var patterns []string

	for _, e := range entries {
		if e.Name() == fileName {
			continue
		}

		patterns = append(patterns, embedPattern(e.Name()))
	}

	if len(patterns) == 0 {
		return nil, errors.New("nothing to embed in package dir")
	}

	sort.Strings(patterns)

	return patterns, nil
}

func embedPattern(name string) string {
	pattern := "all:" + name
	if strings.ContainsAny(pattern, " \t\"'`") {
		return strconv.Quote(pattern)
	}

	return pattern
}

// checkExisting fails if file exists but was not generated for literal.
func checkExisting(file, literal string) error {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return errors.Wrap(err, "read existing file")
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")

	quoted, ok := strings.CutPrefix(firstLine, generatedPrefix)
	if !ok {
		return errors.Wrapf(ErrCollision, "%s was not generated by embeddir", file)
	}

	quoted, _ = strings.CutSuffix(quoted, "; DO NOT EDIT.")

	existing, err := strconv.Unquote(quoted)
	if err != nil {
		return errors.Wrapf(ErrCollision, "%s: unreadable header", file)
	}

	if existing != literal {
		return errors.Wrapf(ErrCollision, "%s embeds %q, not %q", file, existing, literal)
	}

	return nil
}

// ImportPath returns the import path of the package in dir, derived from the
// module path in the go.mod file of the enclosing module.
func ImportPath(dir string) (string, error) {
	root, err := moduleRoot(dir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", errors.Wrap(err, "read go.mod")
	}

	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", errors.Errorf("no module path in %s", filepath.Join(root, "go.mod"))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "abs")
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", errors.Wrap(err, "rel")
	}

	if rel == "." {
		return modulePath, nil
	}

	return modulePath + "/" + filepath.ToSlash(rel), nil
}

func moduleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "abs")
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}

		dir = parent
	}
}

type templateData struct {
	Package    string
	Literal    string
	Identifier string
	FSName     string
	Patterns   string
	Root       string
	Key        string
	Register   bool
}

var sourceTemplate = template.Must(template.New("embed").Parse(`// Code generated by embeddir from {{printf "%q" .Literal}}; DO NOT EDIT.

package {{.Package}}

import (
	"embed"

	"github.com/CageChen/anydir"
)

//go:embed {{.Patterns}}
var {{.FSName}} embed.FS

// {{.Identifier}} is the directory {{printf "%q" .Literal}} as it was at build time.
var {{.Identifier}} = anydir.EmbedDir({{.FSName}}, {{printf "%q" .Root}})
{{if .Register}}
func init() {
	anydir.Register({{printf "%q" .Key}}, {{.Identifier}})
}
{{end}}`))
