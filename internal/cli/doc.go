// Package cli implements the command-line interface for cgv-watch.
//
// The root command runs one full check: it probes the schedule endpoint (or
// renders the cinema page in browser mode), extracts the titles showing in the
// target hall and delivers the report through the configured notifiers. The
// probe and extract subcommands expose the two halves separately for debugging,
// and seal encrypts credentials for use in the environment file. Results are
// written as text or JSON.
package cli
