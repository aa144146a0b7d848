// Package watch runs one schedule check end to end.
//
// In http mode the Runner probes the schedule endpoint across the configured
// date window and extracts titles from the farthest usable date. In browser
// mode it renders the cinema page and extracts from the rendered text. Either
// way the outcome is formatted by the report package and handed to the
// configured notifier. Fetch and extraction problems become diagnostic
// messages; only a delivery failure is returned as an error.
package watch
