package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgumentsWithDefaultCommand(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedArguments []string
	}{
		{
			name:              "EmptyArgumentsRunStatus",
			arguments:         nil,
			expectedArguments: []string{"status"},
		},
		{
			name:              "FlagOnlyArgumentsRunStatus",
			arguments:         []string{"--sort", "age"},
			expectedArguments: []string{"status", "--sort", "age"},
		},
		{
			name:              "JSONToggleRunsStatus",
			arguments:         []string{"--json=true"},
			expectedArguments: []string{"status", "--json=true"},
		},
		{
			name:              "SubcommandPassesThrough",
			arguments:         []string{"scan", "/workspace"},
			expectedArguments: []string{"scan", "/workspace"},
		},
		{
			name:              "UnknownSubcommandPassesThrough",
			arguments:         []string{"stats"},
			expectedArguments: []string{"stats"},
		},
		{
			name:              "HelpFlagPassesThrough",
			arguments:         []string{"--help"},
			expectedArguments: []string{"--help"},
		},
		{
			name:              "HelpShorthandPassesThrough",
			arguments:         []string{"-h"},
			expectedArguments: []string{"-h"},
		},
		{
			name:              "VersionFlagPassesThrough",
			arguments:         []string{"--version"},
			expectedArguments: []string{"--version"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			routedArguments := argumentsWithDefaultCommand(testCase.arguments)
			require.Equal(subtestInstance, testCase.expectedArguments, routedArguments)
		})
	}
}

func TestArgumentsRequestVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedRequest bool
	}{
		{
			name:            "VersionFlagAlone",
			arguments:       []string{"--version"},
			expectedRequest: true,
		},
		{
			name:            "VersionFlagAfterToggle",
			arguments:       []string{"--json=true", "--version"},
			expectedRequest: true,
		},
		{
			name:            "SubcommandWithoutVersion",
			arguments:       []string{"status"},
			expectedRequest: false,
		},
		{
			name:            "EmptyArguments",
			arguments:       nil,
			expectedRequest: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expectedRequest, argumentsRequestVersion(testCase.arguments))
		})
	}
}
