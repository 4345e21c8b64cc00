// Package release models published releases as reported by the release host
// and splits a newest-first release history into the prereleases newer than
// the designated latest stable release and the stable releases older than it.
//
// Input documents are decoded strictly: a key the resolver depends on that is
// absent from a document yields a MissingFieldError, which callers treat as
// terminal for the whole run.
package release
