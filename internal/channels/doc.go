// Package channels compiles the release history into the documents clients and
// the lobby server consume:
//
//   - updates: which release each kind of build should be offered,
//   - compat: compatibility notices for known-problematic environments,
//   - lobby: MOTDs, supported version globs and the netcode compatibility
//     matrix used for multiplayer matching.
//
// Each channel is built independently. A channel that fails is left out of the
// document and reported; only a missing input field aborts the whole document.
package channels
