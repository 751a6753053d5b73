// Package main hosts the reelforge CLI entrypoint and command graph.
//
// Commands resolve configuration once through commandContext, build the
// structured logger from it, and hand the actual work to internal/pipeline,
// internal/alignment and internal/jobs. Keep this package thin: new behaviour
// belongs in an internal package first and is surfaced here as a flag or
// subcommand.
package main
