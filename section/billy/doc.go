// Package billy provides a go-billy-backed section backend.
//
// Sections are regular files below a root directory; a section's name is its
// slash-separated path relative to the root. The backend wraps go-billy's osfs
// (local) and memfs (in-memory) implementations and keeps access to the
// underlying billy.Filesystem so the same tree can be handed to go-git.
//
// Usage:
//
//	// Sections under a local directory
//	backend := billy.NewLocal("/var/lib/sections")
//	store := section.New(backend)
//
//	// In-memory sections for tests
//	store := section.New(billy.NewMemory())
//
// # Thread Safety
//
// A Backend is safe for concurrent use to the extent the underlying
// billy.Filesystem is. Both osfs and memfs are.
package billy
