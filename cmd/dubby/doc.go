// Package main hosts the dubby CLI entrypoint and command graph.
//
// Each job command builds a workflow.Service, runs one job in the foreground,
// and prints the result. The remaining commands inspect job history, check
// external dependencies, and scaffold configuration. Configuration loading
// and logger setup live in commandContext so subcommands stay declarative.
package main
