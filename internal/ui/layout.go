package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is
	// stacked under the section list.
	LayoutCompactWidth = 100

	// LayoutListWidth is the section list width in the side-by-side layout.
	LayoutListWidth = 38
)

// Timeouts for commands started from the UI. Saves use the session's own
// timeout.
const (
	LoadTimeout  = 30 * time.Second
	AITimeout    = 90 * time.Second
	ImageTimeout = 60 * time.Second
)

// statusTTL is how long a notification stays in the status line.
const statusTTL = 6 * time.Second
