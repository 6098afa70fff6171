package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	be.Err(t, os.WriteFile(path, []byte(content), 0644), nil)
	return path
}

func TestLoadProgramByExtension(t *testing.T) {
	sexprFile := writeTemp(t, "prog.pl0", `(program (var x) (write x))`)
	yamlFile := writeTemp(t, "prog.yaml", "program:\n  vars: [x]\n  body: {write: x}\n")
	ymlFile := writeTemp(t, "prog.YML", "program:\n  vars: [x]\n  body: {write: x}\n")

	for _, path := range []string{sexprFile, yamlFile, ymlFile} {
		prog, err := loadProgram(path)
		be.Err(t, err, nil)
		be.Equal(t, `(program (var x) (write x))`, ToSExpr(prog))
	}
}

func TestLoadProgramMissingFile(t *testing.T) {
	_, err := loadProgram(filepath.Join(t.TempDir(), "missing.pl0"))
	be.Err(t, err, os.ErrNotExist)
}

func TestCompileFile(t *testing.T) {
	path := writeTemp(t, "prog.pl0", `(program (proc p (block (write 7))) (call p))`)
	code, err := compileFile(path, false)
	be.Err(t, err, nil)
	be.Equal(t, 7, code.Len())
	be.Equal(t, "7\n", executeCode(t, code, ""))
}

func TestCompileFileReportsResolutionErrors(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "program:\n  body: {write: y}\n")
	_, err := compileFile(path, false)
	be.Err(t, err, "symbol resolution errors")
	be.Err(t, err, "2:17: error: undeclared identifier 'y'")
}

func TestCompileFileReportsCodeGenerationErrors(t *testing.T) {
	path := writeTemp(t, "bad.pl0", `(program (call q))`)
	_, err := compileFile(path, false)
	be.Err(t, err, "undeclared procedure 'q'")
}
