// Package ui provides the terminal section editor for GeoDUA chapters.
//
// # Architecture Overview
//
// The UI is a bubbletea program. Model holds presentation state only: the
// rendered item list, the selection, the detail viewport and the open modal.
// All section data lives in an editor.Session; every key that changes
// content calls a Session method and then refreshes from Session.Items.
// Network and AI calls run as tea.Cmd functions and report back through
// result messages, so Update never blocks.
//
// # Package Structure
//
//   - app.go: Model, Update, key dispatch and the Run entry point
//   - commands.go: result messages and the tea.Cmd wrappers around Session
//   - header.go: header, command bar and status line
//   - sections.go: section list, detail pane and image list
//   - modal.go: input, confirm and picker modals
//   - help.go: the help overlay built from the key map
//   - keys.go: key bindings
//   - theme.go, style_helpers.go, layout.go: colors and sizing
//
// # Modes
//
// The editor opens in view mode. Edit keys are ignored with a warning until
// e switches to edit mode, which needs an account that can manage content.
// Leaving edit mode with pending changes is refused; save (s), save as a
// draft (d) or discard (u) first. The last chosen mode is remembered in the
// preferences file and restored on the next start.
//
// # Key Features
//
//   - Reorder with K/J; positions stay contiguous from 1
//   - Add (a) and remove (x) sections; R lists removed sections until save
//   - Edit title, summary, body, position and 3D model fields (enter)
//   - Attach (i), reorder (</>), caption (c) and remove (X) images
//   - AI summaries (S) with like/dislike feedback (+/-)
//   - AI image descriptions (D) and spoken sections (v)
//
// # Event Flow
//
//  1. Run starts the program; Init loads the chapter and records a visit
//  2. Key presses call Session mutations and refresh the list
//  3. Long operations set a busy label and return a command
//  4. Result messages clear the label and post a status line
//  5. Quit with pending changes asks for confirmation
package ui
