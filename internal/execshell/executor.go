package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CommandName identifies the executable invoked by the ShellExecutor.
type CommandName string

const (
	// CommandGit identifies the git executable.
	CommandGit CommandName = "git"
)

const (
	commandFailedErrorTemplateConstant    = "%s command failed with exit code %d%s"
	commandExecutionErrorTemplateConstant = "%s command execution failed: %v"
	standardErrorDetailTemplateConstant   = ": %s"
	loggerFieldNameConstant               = "command"
	exitCodeFieldNameConstant             = "exit_code"
)

// ErrLoggerNotConfigured reports that a ShellExecutor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New("shell executor requires a logger")

// ErrCommandRunnerNotConfigured reports that a ShellExecutor was constructed without a command runner.
var ErrCommandRunnerNotConfigured = errors.New("shell executor requires a command runner")

// CommandDetails captures the inputs for a single command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including its exit code and captured standard error.
func (failure CommandFailedError) Error() string {
	standardErrorDetail := ""
	if len(failure.Result.StandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, failure.Result.StandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external commands through a CommandRunner while logging
// lifecycle messages and notifying registered observers.
type ShellExecutor struct {
	logger           *zap.Logger
	commandRunner    CommandRunner
	eventObserver    CommandEventObserver
	messageFormatter CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor. Observers
// beyond the built-in logging are optional; passing none installs a no-op observer.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, eventObservers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var eventObserver CommandEventObserver = noopCommandEventObserver{}
	if len(eventObservers) > 0 && eventObservers[0] != nil {
		eventObserver = eventObservers[0]
	}

	return &ShellExecutor{
		logger:           logger,
		commandRunner:    commandRunner,
		eventObserver:    eventObserver,
		messageFormatter: CommandMessageFormatter{},
	}, nil
}

// ExecuteGit runs the git executable with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, returning the captured result. A non-zero
// exit code yields a CommandFailedError; a command that could not run at all
// yields a CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logger.Debug(executor.messageFormatter.BuildStartedMessage(command), zap.String(loggerFieldNameConstant, string(command.Name)))

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionError := CommandExecutionError{Command: command, Cause: runError}
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logger.Debug(executor.messageFormatter.BuildExecutionFailureMessage(command, runError), zap.String(loggerFieldNameConstant, string(command.Name)))
		return ExecutionResult{}, executionError
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Debug(executor.messageFormatter.BuildFailureMessage(command, executionResult), zap.String(loggerFieldNameConstant, string(command.Name)), zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode))
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(executor.messageFormatter.BuildSuccessMessage(command), zap.String(loggerFieldNameConstant, string(command.Name)))
	return executionResult, nil
}
