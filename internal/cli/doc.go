// Package cli implements the taskdown command line.
//
// The root command loads configuration once in PersistentPreRunE and hands
// the resulting config and logger to each subcommand through RootOptions.
package cli
