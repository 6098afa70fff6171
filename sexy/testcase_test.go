package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Writes

## Test: write literal
` + fence + `pl0-program
(program (write 7))
` + fence + `
` + fence + `code
0 INC 3
1 LIT 7
2 CHO
3 HLT
` + fence + `

## Test: skip
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `execute
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "write literal")
	be.Equal(t, tc1.Input, "(program (write 7))")
	be.Equal(t, tc1.InputType, InputTypeProgram)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeCode)
	be.Equal(t, tc1.Assertions[0].Content, "0 INC 3\n1 LIT 7\n2 CHO\n3 HLT")
	be.True(t, tc1.Assertions[0].ParsedSexy == nil)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "skip")
	be.Equal(t, len(tc2.Assertions), 1)
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeExecute)
	be.Equal(t, tc2.Assertions[0].Content, "")
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: resolved names
` + fence + `pl0-program
(program (var x) (assign x 1))
` + fence + `
` + fence + `ast
(program (var x) (assign (id x 0 3) 1))
` + fence + `
` + fence + `execute
` + fence + `
` + fence + `compile-error
nothing
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 3)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[0].ParsedSexy.String(), "(program (var x) (assign (id x 0 3) 1))")
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeCompileError)
	be.Equal(t, tc.Assertions[2].Content, "nothing")
}

func TestExtractTestCases_InputFence(t *testing.T) {
	markdown := `## Test: echo
` + fence + `pl0-program
(program (var x) (begin (read x) (write x)))
` + fence + `
` + fence + `input
42
` + fence + `
` + fence + `execute
42
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputData, "42\n")
	be.Equal(t, len(tc.Assertions), 1)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[0].Content, "42")
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Some document

This is just regular markdown content.

## Regular heading

No test cases here.`

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		fenceType string
	}{
		{
			"program fence outside test",
			"# Document\n\n```pl0-program\n(program (skip))\n```\n",
			"pl0-program",
		},
		{
			"code fence outside test",
			"# Document\n\n```code\n0 HLT\n```\n",
			"code",
		},
		{
			"input fence outside test",
			"# Document\n\n```input\n1\n```\n",
			"input",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.fenceType+" fence found outside of test case"))
			be.True(t, strings.Contains(err.Error(), "line"))
		})
	}
}

func TestExtractTestCases_UnknownFenceOutsideTest(t *testing.T) {
	markdown := "# Document\n\n```go\nfunc main() {}\n```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'go' found outside of test case"))
}

func TestExtractTestCases_UnknownFenceInTest(t *testing.T) {
	markdown := `## Test: with unknown fence
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `python
print("hello")
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'python'"))
	be.True(t, strings.Contains(err.Error(), "line"))
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := `## Test: no input
` + fence + `code
0 HLT
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no input' has no input fence"))
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := `## Test: no assertions
` + fence + `pl0-program
(program (skip))
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no assertions' has no assertion fences"))
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: multiple inputs
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `pl0-program
(program (write 1))
` + fence + `
` + fence + `execute
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "multiple input fences found"))
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := `# Document with generic code block

` + fence + `
some code without language
` + fence + `

## Test: valid test
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `code
0 INC 3
1 NOP
2 HLT
` + fence + `

` + fence + `
more code without language in test
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `ast
(unclosed list
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "failed to parse Sexy assertion"))
	be.True(t, strings.Contains(err.Error(), "line"))
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + fence + `pl0-program
(program (skip))
` + fence + `
` + fence + `execute
` + fence + `

## Test: second test missing input
` + fence + `code
0 HLT
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'second test missing input' has no input fence"))
}

func TestExtractTestCases_AssertionLineNumbers(t *testing.T) {
	markdown := "## Test: lines\n" +
		"```pl0-program\n(program (skip))\n```\n" +
		"```code\n0 HLT\n```\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Assertions[0].Line, 6)
}
