package errors

// ErrorKind is a caller-facing classification of failure.
// Kinds are string-based for debuggability and natural JSON serialization.
type ErrorKind string

const (
	// KindInvalidArgument indicates the caller supplied an absent or invalid
	// argument. It is raised before any collaborator call is made.
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"

	// KindNotFound indicates the target of the operation does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindPermissionDenied indicates the collaborator refused access to the target.
	KindPermissionDenied ErrorKind = "PERMISSION_DENIED"

	// KindDeviceUnavailable indicates a device could not be opened, did not
	// respond, or reported a fault.
	KindDeviceUnavailable ErrorKind = "DEVICE_UNAVAILABLE"

	// KindStorageFailure indicates a storage backend failed to complete the operation.
	KindStorageFailure ErrorKind = "STORAGE_FAILURE"

	// KindTimeout indicates the operation exceeded its deadline.
	KindTimeout ErrorKind = "TIMEOUT"

	// KindCancelled indicates the caller cancelled the operation.
	KindCancelled ErrorKind = "CANCELLED"

	// KindUnknown indicates a collaborator failure that no translation rule recognized.
	KindUnknown ErrorKind = "UNKNOWN"

	// KindInternal indicates a failure in the boundary's own code.
	KindInternal ErrorKind = "INTERNAL"
)

// kinds is the fixed enumeration, in declaration order.
var kinds = []ErrorKind{
	KindInvalidArgument,
	KindNotFound,
	KindPermissionDenied,
	KindDeviceUnavailable,
	KindStorageFailure,
	KindTimeout,
	KindCancelled,
	KindUnknown,
	KindInternal,
}

// descriptions are the default human-readable messages for each kind.
// They are used when a translation rule does not supply its own message.
var descriptions = map[ErrorKind]string{
	KindInvalidArgument:   "invalid argument",
	KindNotFound:          "not found",
	KindPermissionDenied:  "permission denied",
	KindDeviceUnavailable: "device unavailable",
	KindStorageFailure:    "storage failure",
	KindTimeout:           "operation timed out",
	KindCancelled:         "operation cancelled",
	KindUnknown:           "unexpected failure",
	KindInternal:          "internal error",
}

// Kinds returns every ErrorKind a translation boundary can produce.
// The returned slice is a copy and may be modified by the caller.
func Kinds() []ErrorKind {
	out := make([]ErrorKind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is a member of the fixed enumeration.
func (k ErrorKind) Valid() bool {
	_, ok := descriptions[k]
	return ok
}

// Describe returns the default human-readable message for the kind.
func (k ErrorKind) Describe() string {
	if d, ok := descriptions[k]; ok {
		return d
	}
	return descriptions[KindUnknown]
}

// String returns the kind identifier.
func (k ErrorKind) String() string {
	return string(k)
}
