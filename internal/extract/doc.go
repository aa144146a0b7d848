// Package extract pulls movie titles for one auditorium out of schedule text.
//
// Lines mentioning the hall marker are joined into a single buffer and scanned for
// title-like runs of Hangul, Latin letters, digits and a small punctuation set.
// Candidates are trimmed, dropped when they contain a blacklisted word, deduplicated
// in first-seen order and capped.
package extract
