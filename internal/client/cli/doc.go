// Package cli provides the interactive screenpad command-line client.
//
// It wires configuration, local storage, the remote store adapter and an
// interactive REPL that supports online/offline operation. Typical flow:
// derive the identity from the access token, start a background connectivity
// watcher, and execute user commands against the screen catalog.
//
// Key features:
//   - List / show / create / delete screens
//   - An edit session with undo/redo and debounced autosave
//   - Import / export of screen payloads
//   - Pending-queue inspection and replay
//   - Share-token publish / rotate / revoke
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
