// Package scraper fetches per-date showtime schedules over HTTP.
//
// The scraper requests the theater's embedded schedule endpoint for a date and turns the
// returned HTML into line-oriented text. When the page uses the known showtime layout,
// each auditorium block becomes one line carrying the movie title, hall and times, so
// hall-based extraction sees the title on the same line as the hall. Any other page is
// flattened with block elements as line breaks.
package scraper
