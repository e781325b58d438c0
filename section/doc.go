// Package section provides a translation boundary over stores of named
// sections.
//
// A section is a named blob of text kept by some storage collaborator: a local
// directory, an in-memory filesystem, an S3 or MinIO bucket, a git tree, a
// GitHub repository, or an OCI artifact. The Store in this package is the only
// code that decides what the outcome of an operation means for the caller:
//
//   - Invalid input (an empty, absolute, or escaping name) is rejected with
//     KindInvalidArgument before the backend is touched.
//   - A store that holds no sections lists as a non-nil empty slice. So does
//     one whose backend returns ErrNoSections because its location has not
//     been created yet; every other List failure is reported.
//   - Every backend failure is translated into exactly one ErrorKind using the
//     backend's own failure table followed by FileRules.
//
// Backends live in subpackages (billy, minio, s3, git, github, oci) and are thin
// adapters over their collaborator; they return raw collaborator errors and
// describe them through Rules.
//
// # Quick Start
//
//	store := section.New(billy.NewMemory(),
//	    section.WithSink(report.NewLogSink(logger)),
//	)
//
//	sec, err := store.RetrieveSection(ctx, "chapters/intro")
//	if errors.IsKind(err, errors.KindNotFound) {
//	    // create it
//	}
//
//	names, err := store.ListSections(ctx) // never nil on success
package section
