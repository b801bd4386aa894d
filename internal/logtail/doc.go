// Package logtail reads the tail of the geodua log file.
//
// # Overview
//
// The TUI owns the terminal, so the editor logs to <data_dir>/geodua.log.
// `geodua logs` uses this package to show the end of that file, optionally
// filtered by level.
//
// # Reading
//
// Read keeps a ring buffer of the last n lines while scanning the file once,
// so memory stays proportional to n and not to the file size:
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// # Levels
//
// Level understands both slog handlers the logger package can install:
//
//	time=... level=WARN msg="save failed" ...
//	{"time":"...","level":"WARN","msg":"save failed"}
//
// Filter drops records below a level; Colorize highlights debug, warn and
// error records with lipgloss when the output supports color.
package logtail
