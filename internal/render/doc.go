// Package render drives a headless browser through a short list of page interactions
// and returns the rendered body text.
//
// Interactions are best effort. Only navigation and reading the body are fatal; a
// click whose labels are all missing, or a failed scroll, is logged and the run goes on.
package render
