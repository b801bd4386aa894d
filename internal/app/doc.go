// Package app provides the composition root for GeoDUA.
//
// # Overview
//
// This package wires configuration, logging, the content API client, the
// local database and the AI provider into an Env, and hands an
// editor.Session built from it to the TUI. The CLI commands in cmd/geodua
// open the same Env, so the TUI and one-shot commands share one wiring.
//
// # Architecture
//
//  1. Load ~/.config/geodua/config.toml plus GEODUA_* environment overrides
//  2. Open the logger (log file for the TUI, stderr for CLI commands)
//  3. Load preferences (theme, last edit mode)
//  4. Create the rate-limited content client with the stored token
//  5. Open the local database; mark interrupted saves in the journal
//  6. Select the AI provider, falling back to a disabled one
//  7. For the TUI: fetch the current user and chapter, then run ui.Run
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Open Env, then start the editor
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config and secrets
//	       ├─────> content.NewClient()  HTTP client for the GeoDUA API
//	       ├─────> localdb.OpenDir()    Journal and history storage
//	       ├─────> ai.New()             Summaries, descriptions, speech
//	       ├─────> CurrentUser()        Permission check input
//	       ├─────> GetChapter()         Chapter header
//	       └─────> ui.Run()             Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Open or Run):
//   - Invalid configuration file
//   - Missing token (run geodua login)
//   - Unreachable API when fetching the user or chapter
//   - Local database that cannot be opened
//   - Unknown AI provider name
//
// A missing AI key is not fatal: AI actions report that the provider is not
// configured.
//
// # Usage Example
//
//	env, err := app.Open(ctx, app.Options{})
//	if err != nil {
//		return err
//	}
//	defer env.Close()
//
//	sections, err := editor.NewStore(env.Client).Load(ctx, 12)
package app
