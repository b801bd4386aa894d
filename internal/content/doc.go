// Package content provides an HTTP client for the GeoDUA content API.
//
// # Overview
//
// The client is the persistence collaborator of the section editor. It lists,
// creates, updates and deletes sections and images, stores composed drafts and
// publishes them, and exposes the few account calls the editor depends on
// (current user, login, navigation history).
//
// # Architecture
//
//   - client.go: request plumbing and one method per API call
//   - types.go: wire types mirroring the API schema
//
// # Client Usage
//
//	client, err := content.NewClient("http://127.0.0.1:8000",
//		content.WithToken(token),
//		content.WithRateLimit(10),
//	)
//	if err != nil {
//		return err
//	}
//	sections, err := client.ListSections(ctx, chapterID)
//
// # Partial Updates
//
// UpdateSection and UpdateImage take patch structs whose fields are pointers.
// Only non-nil fields are serialized, so a PATCH body names exactly the fields
// the editor found changed.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and a per-request X-Request-ID
//   - Send Authorization: Bearer <token> when a token is configured
//   - Wait on the optional rate limiter before dialing
//
// # Error Handling
//
// Every failure is an *errors.Error with a code the caller can branch on:
//
//   - NETWORK: the request never got a response (retryable)
//   - UNAVAILABLE: 429 or 5xx (retryable)
//   - VALIDATION: 400/422, details copied from the response body
//   - NOT_FOUND, UNAUTHORIZED, FORBIDDEN, CONFLICT
//
// The server is expected to reject writes from users without the
// "can manage content" capability with 403.
package content
