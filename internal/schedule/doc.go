// Package schedule provides the date probe that locates the farthest showtime schedule.
//
// The schedule package walks a bounded window of calendar dates starting at a given day,
// asks a fetch function for each date's schedule document, and keeps the last document
// judged usable. Dates are scanned in ascending order without early exit, so the result
// is always the usable date with the largest offset in the window.
package schedule
