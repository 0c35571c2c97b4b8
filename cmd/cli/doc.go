// Package cli constructs the gitscope command-line interface, wiring the
// Cobra command hierarchy, configuration loader, structured logging, and
// output rendering primitives. It exposes helpers to build reusable
// application instances and to execute the default command set as a
// reusable library.
package cli
