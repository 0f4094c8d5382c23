// Package enhance post-processes generated blog HTML.
//
// All functions are pure string transformations with no I/O: they splice
// calls-to-action, lead magnet offers, citations, images, and structured
// data into article HTML. Route handlers re-run them on every edit, so
// every insertion is idempotent: each function detects its own marker in
// the input and returns the content unchanged when the marker is already
// present. Insertions never compound.
package enhance
