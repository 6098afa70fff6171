package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `pl0gen - PL/0 code generator for a stack machine

Usage:
    pl0gen <command> [arguments]

Commands:
    build <file>    Compile a program tree to a stack machine listing
    check <file>    Resolve names and compile without writing output
    dump <file>     Print the program tree as an s-expression
    help            Show this help message

Program trees are read as YAML when the file name ends in .yaml or .yml,
and as s-expressions otherwise.

Examples:
    pl0gen build -o square.pl0s square.pl0
    pl0gen check -v nested.yaml
    pl0gen dump nested.yaml

Use "pl0gen <command> -h" for more information about a command.
`)
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <filename>.pl0s)")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pl0gen build [-o output] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a program tree to a stack machine listing\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".pl0s"
	}

	if *verbose {
		fmt.Printf("Compiling %s to %s...\n", filename, outputFile)
	}

	code, err := compileFile(filename, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}

	err = os.WriteFile(outputFile, []byte(code.String()), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing listing %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d instructions)\n", outputFile, code.Len())
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show verbose checking details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pl0gen check [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Resolve names and compile a program tree without writing output\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)

	if *verbose {
		fmt.Printf("Checking %s...\n", filename)
	}

	if _, err := compileFile(filename, *verbose); err != nil {
		fmt.Printf("Errors in %s:\n%v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)
}

func dumpCommand(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pl0gen dump <file>\n")
		fmt.Fprintf(os.Stderr, "Print the program tree as an s-expression\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	prog, err := loadProgram(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(ToSExpr(prog))
}

// loadProgram reads a program tree, picking the reader by file extension.
func loadProgram(filename string) (*ASTNode, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseYAMLProgram(data)
	default:
		return ParseSExprProgram(string(data))
	}
}

// compileFile loads, resolves and compiles a program.
func compileFile(filename string, verbose bool) (Code, error) {
	prog, err := loadProgram(filename)
	if err != nil {
		return Code{}, err
	}
	return compileTree(prog, verbose)
}

func compileTree(prog *ASTNode, verbose bool) (Code, error) {
	symbolTable := BuildSymbolTable(prog)
	if symbolTable.Errors.HasErrors() {
		return Code{}, fmt.Errorf("symbol resolution errors:\n%s", symbolTable.Errors.String())
	}

	if verbose {
		fmt.Printf("AST: %s\n", ToSExpr(prog))
	}

	compiler := NewCompiler()
	code, err := compiler.CompileProgram(prog)
	if err != nil {
		return Code{}, err
	}

	if verbose {
		printProcTable(compiler.Procs())
	}
	return code, nil
}

func printProcTable(procs *ProcTable) {
	if procs.Len() == 0 {
		fmt.Printf("Procedures: none\n")
		return
	}
	fmt.Printf("Procedures:\n")
	for _, entry := range procs.Entries() {
		fmt.Printf("  %-16s addr %-4d size %-4d locals %d\n", entry.Name, entry.Addr, entry.Code.Len(), entry.Locals)
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "check":
		checkCommand(args)
	case "dump":
		dumpCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
