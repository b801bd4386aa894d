// Package editor implements section editing for one chapter: the collection
// store, the edit overlay and the reconciler that saves the overlay.
//
// # Overview
//
// A Session loads a chapter's sections from a Persistence collaborator and
// keeps three pieces of state:
//
//   - Store: persisted sections and the images fetched so far, in persisted
//     order. It changes only on load, lazy image fetches and restore.
//   - Snapshot: a deep copy of the store taken at load. It is the baseline
//     the overlay diffs against and the state Discard restores.
//   - Overlay: uncommitted edits. Sparse patches for persisted sections,
//     full drafts for new ones, temporary images, image patches and
//     tombstones for removals.
//
// Items composes the three into what the host renders.
//
// # Data Flow
//
//	Load ──> Store + Snapshot
//	            │
//	EditField, Move, AddImage, RemoveSection ... ──> Overlay
//	            │
//	Save ──> reconciler ──> Persistence (sequential calls)
//	            │ ok                      │ failure
//	            ▼                         ▼
//	  clear Overlay, reload      keep Overlay, PERSISTENCE error
//	  Store + Snapshot           listing committed operations
//
//	Discard ──> clear Overlay, Store.Restore(Snapshot)
//
// # Item States
//
// Every section is in exactly one State:
//
//	StateClean       persisted, no pending edit
//	StateDirty       persisted, patched or with image edits
//	StateDraft       created locally, not persisted yet
//	StateTombstoned  persisted, marked for deletion on save
//
// A patch that no longer differs from the snapshot is dropped, so editing a
// field back to its saved value returns the section to StateClean.
//
// # Ordering
//
// Section orders are a permutation of 1..N over the visible sections (clean,
// dirty and draft; tombstoned ones are skipped). Every reorder ends in
// Renumber:
//
//   - Move: arrow move, wrapping (first up goes last, last down goes first)
//   - MoveTo and EditField(FieldOrder): drop at an index, clamped
//   - AddSection: appends at N+1
//   - RemoveSection: renumbers the remaining sections
//
// New orders are written through the overlay like any other edit. Images use
// the same routine within their section.
//
// # Save
//
// Save validates the overlay, then issues in order:
//
//  1. UpdateSection for patched sections, only fields that differ
//  2. UpdateImage for changed descriptions and orders
//  3. CreateImage for temporary images of persisted sections (compressed)
//  4. DeleteImage for removed persisted images, DeleteSection for removed
//     sections; removed temporary images are dropped without a call
//  5. CreateSection for drafts, then CreateImage under the new id
//
// The first failure stops the save. Ids created before the failure are
// remembered, so the next Save updates those items instead of creating them
// again, and NOT_FOUND on a delete counts as done. The whole save runs under
// Options.SaveTimeout.
//
// Mutations return ErrBusy while a save or save-as-draft is in flight.
//
// # AI
//
// GenerateSummary records the generated summary and the provider and prompt
// that produced it as one overlay edit. RateSummary attaches like/dislike
// feedback to that provenance and fails when the summary was not generated.
package editor
