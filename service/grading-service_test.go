package service

import (
	"context"
	"fmt"
	"testing"

	"oasis/client"
	"oasis/repository"

	"github.com/stretchr/testify/assert"
)

// fakeJudge answers with a canned stdout per stdin and records every call.
type fakeJudge struct {
	outputs map[string]string
	err     error
	calls   int
}

func (f *fakeJudge) Execute(ctx context.Context, sourceCode string, languageId int, stdin string) (*client.JudgeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.JudgeResult{Stdout: f.outputs[stdin]}, nil
}

func TestRunTestCasesAllPass(t *testing.T) {
	judge := &fakeJudge{outputs: map[string]string{
		"1 2": "3",
		"4 5": "9",
	}}
	grading := &GradingService{judge: judge}
	testCases := []*repository.TestCase{
		{Input: "1 2", Expected: "3"},
		{Input: "4 5", Expected: "9"},
	}

	results, allPassed := grading.RunTestCases(context.Background(), "code", 71, testCases)
	assert.True(t, allPassed)
	assert.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Passed)
	}
	assert.Equal(t, 2, judge.calls, "every test case should reach the judge")
}

func TestRunTestCasesSingleFailureRejects(t *testing.T) {
	judge := &fakeJudge{outputs: map[string]string{
		"1 2": "3",
		"4 5": "wrong",
	}}
	grading := &GradingService{judge: judge}
	testCases := []*repository.TestCase{
		{Input: "1 2", Expected: "3"},
		{Input: "4 5", Expected: "9"},
	}

	results, allPassed := grading.RunTestCases(context.Background(), "code", 71, testCases)
	assert.False(t, allPassed, "one failing case rejects the submission")
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.Equal(t, "wrong", results[1].Output)
	assert.Equal(t, 2, judge.calls, "grading keeps running after a failed case")
}

func TestRunTestCasesTrimsWhitespace(t *testing.T) {
	judge := &fakeJudge{outputs: map[string]string{
		"in": "42\n",
	}}
	grading := &GradingService{judge: judge}
	testCases := []*repository.TestCase{
		{Input: "in", Expected: "  42  "},
	}

	results, allPassed := grading.RunTestCases(context.Background(), "code", 71, testCases)
	assert.True(t, allPassed)
	assert.True(t, results[0].Passed, "leading and trailing whitespace is ignored when comparing output")
}

func TestRunTestCasesJudgeOutageDegradesToFailure(t *testing.T) {
	judge := &fakeJudge{err: fmt.Errorf("judge unreachable")}
	grading := &GradingService{judge: judge}
	testCases := []*repository.TestCase{
		{Input: "1 2", Expected: "3"},
		{Input: "4 5", Expected: "9"},
	}

	results, allPassed := grading.RunTestCases(context.Background(), "code", 71, testCases)
	assert.False(t, allPassed)
	assert.Len(t, results, 2, "a judge error fails the case but does not abort the run")
	for _, result := range results {
		assert.False(t, result.Passed)
		assert.Empty(t, result.Output)
		assert.Equal(t, "could not grade this test case", result.Error)
	}
	assert.Equal(t, 2, judge.calls)
}

func TestRunTestCasesEmptySetNeverPasses(t *testing.T) {
	judge := &fakeJudge{}
	grading := &GradingService{judge: judge}

	results, allPassed := grading.RunTestCases(context.Background(), "code", 71, nil)
	assert.False(t, allPassed, "a challenge without test cases cannot be auto-accepted")
	assert.Empty(t, results)
	assert.Equal(t, 0, judge.calls)
}

func TestRunManualUsesCallerStdin(t *testing.T) {
	judge := &fakeJudge{outputs: map[string]string{
		"custom input": "custom output",
	}}
	grading := &GradingService{judge: judge}

	result, err := grading.RunManual(context.Background(), "code", 71, "custom input")
	assert.NoError(t, err)
	assert.Equal(t, "custom output", result.Output())
	assert.Equal(t, 1, judge.calls)
}

func TestGithubLinkPattern(t *testing.T) {
	valid := []string{
		"https://github.com/oasis-protocol/backend",
		"https://github.com/user-name/repo_name",
		"https://github.com/a/b/tree/main",
	}
	invalid := []string{
		"http://github.com/user/repo",
		"https://gitlab.com/user/repo",
		"https://github.com/user",
		"github.com/user/repo",
		"",
	}
	for _, link := range valid {
		assert.True(t, githubLinkPattern.MatchString(link), "expected %q to be accepted", link)
	}
	for _, link := range invalid {
		assert.False(t, githubLinkPattern.MatchString(link), "expected %q to be rejected", link)
	}
}
