// Argus is a CI pipeline task that reviews pull requests with an LLM endpoint.
//
// It collects the changed files, sends them to the configured model, normalizes
// the free-text response into structured findings, and publishes the results as
// PR comments, inline annotations, description updates, and labels, with
// deterministic exit codes suitable for pipeline gating.
//
// Usage:
//
//	argus all                       # run the comprehensive analysis suite
//	argus analyze review            # run one analysis kind
//	argus analyze security --publish
//	argus kinds                     # list available analysis kinds
//	argus cache clear               # drop cached model responses
//
// See https://github.com/argus-ci/argus for full documentation.
package main
