// Package ui renders callback outcomes for the browser and the terminal.
//
// [Headings] is the title/subheader pair derived from a [models.Outcome] by [HeadingsFor]. Its HTML
// method produces the page served by the callback route: the title is the h1, the subheader the h2.
//
// [Waiting] is a bubbletea model shown while a listener run is in progress. It renders a spinner and
// the URL to open, and quits with the final headings once the run resolves. Pressing q or ctrl+c
// cancels the run, which then resolves to a no-response outcome.
package ui
