package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		input       string
		expected    string
	}{
		{description: "no expressions", input: "just a plain string", expected: "just a plain string"},
		{description: "single expression", env: map[string]string{"SWAP": "/tmp/swap.bin"}, input: "path: ${env.SWAP}", expected: "path: /tmp/swap.bin"},
		{description: "multiple expressions", env: map[string]string{"A": "1", "B": "2"}, input: "${env.A}-${env.B}-${env.A}", expected: "1-2-1"},
		{description: "unset variable becomes empty", input: "unset=${env.NOTSET}-end", expected: "unset=-end"},
		{description: "malformed missing closing brace", env: map[string]string{"X": "x"}, input: "start ${env.X and ${env.Y} end", expected: "start ${env.X and  end"},
		{description: "unterminated expression", input: "tail ${env.OPEN", expected: "tail ${env.OPEN"},
		{description: "prefix only no key", input: "oops ${env.} done", expected: "oops  done"},
		{description: "shell style references stay literal", env: map[string]string{"HOME": "/root"}, input: "format: $HOME ${HOME} $$", expected: "format: $HOME ${HOME} $$"},
	}

	for _, testCase := range testCases {
		lookup := func(key string) string { return testCase.env[key] }
		actual := Expand(testCase.input, lookup)
		assert.EqualValues(t, testCase.expected, actual, testCase.description)
	}
}
