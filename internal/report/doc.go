// Package report turns the outcome of one watch run into the subject and body
// of the message delivered to the configured notifiers.
//
// A run that found titles produces a plain "- title" list. Runs that could not
// fetch a usable schedule, or fetched one but extracted nothing, produce a
// diagnostic body instead, since the delivered message is the only place a
// cron-driven run reports its failures.
package report
