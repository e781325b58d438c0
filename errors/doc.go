// Package errors provides the error taxonomy shared by every translation
// boundary in this module.
//
// Callers of a boundary never see a collaborator's own failure types. Every
// failure a collaborator produces (a missing file, a refused device, a throttled
// object store) is intercepted at the boundary and re-raised as exactly one
// TranslatedError whose ErrorKind is drawn from a small, fixed enumeration.
// The package stays compatible with the standard library errors package
// (errors.Is, errors.As, errors.Unwrap), so the original failure remains
// reachable for diagnostics.
//
// # Features
//
//   - A closed set of caller-meaningful error kinds
//   - Operation identity attached to every translated error
//   - Total translation tables (Rule, Translator) that map arbitrary failures
//     to exactly one kind, falling back to KindUnknown
//   - Classification (retryable vs permanent) derived from the kind
//   - Context metadata attachment for debugging
//   - JSON serialization that never exposes the wrapped cause
//
// # Design Principles
//
//   - Standard library compatibility (errors.Is, errors.As, errors.Unwrap)
//   - Immutability (errors are immutable once created)
//   - Recovery decisions are keyed on ErrorKind only; the cause is for humans
//   - Translation is pure and safe for concurrent use
//
// # Quick Start
//
// Declaring a boundary's translation table:
//
//	var translator = errors.NewTranslator(
//	    errors.Match(fs.ErrNotExist, errors.KindNotFound, "section does not exist"),
//	    errors.Match(fs.ErrPermission, errors.KindPermissionDenied, "access to section denied"),
//	    errors.MatchType[*DeviceError](errors.KindDeviceUnavailable, "device failed"),
//	)
//
// Translating a collaborator failure:
//
//	f, err := backend.Open(ctx, name)
//	if err != nil {
//	    return Section{}, translator.Translate("retrieveSection", err)
//	}
//
// Recovering on the kind:
//
//	switch errors.GetKind(err) {
//	case errors.KindNotFound:
//	    // create it
//	case errors.KindDeviceUnavailable:
//	    // try the standby device
//	}
//
// Adding context:
//
//	err := errors.New(errors.KindInvalidArgument, "retrieveSection", "name is empty")
//	err = errors.WithContext(err, "store", "local")
//
// # Error Kinds
//
//   - KindInvalidArgument: input rejected before any collaborator call
//   - KindNotFound: the target of the operation does not exist
//   - KindPermissionDenied: the collaborator refused access
//   - KindDeviceUnavailable: a device could not be reached or used
//   - KindStorageFailure: a storage backend failed to complete the operation
//   - KindTimeout: the operation exceeded its deadline
//   - KindCancelled: the operation was cancelled by the caller
//   - KindUnknown: a collaborator failure no translation rule recognized
//   - KindInternal: a failure of the boundary's own code
//
// The set only grows when a caller genuinely needs a new recovery action. A new
// collaborator failure type is always mapped onto an existing kind first.
//
// # Error Classification
//
// Each kind carries a default classification:
//
//   - Retryable: KindDeviceUnavailable, KindStorageFailure, KindTimeout
//   - Permanent: everything else
//
// Whether to actually retry is the caller's decision; boundaries never retry on
// their own. Use IsRetryable to make that decision and WithClassification to
// override the default for a specific error.
//
// # JSON
//
// ToJSON and MarshalJSON produce a flat representation (kind, operation,
// message, classification, context). The wrapped cause is deliberately left out
// because collaborator failures routinely contain paths, endpoints, and
// credentials.
package errors
