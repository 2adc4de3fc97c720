package logger

import (
	"log/slog"

	"github.com/google/uuid"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log
// aggregation and querying.
const (
	// ========================================================================
	// Request & Operation
	// ========================================================================
	KeyRequestID = "request_id" // API request id
	KeyOperation = "operation"  // Logical operation: resolve, ingest, reconcile, ...
	KeyStatus    = "status"     // HTTP status code

	// ========================================================================
	// Catalog
	// ========================================================================
	KeyVolume   = "volume"    // Volume id
	KeyFolder   = "folder"    // Folder id
	KeyPath     = "path"      // Folder path within a volume
	KeyAsset    = "asset"     // Asset id
	KeyFilename = "filename"  // Asset filename
	KeyOldName  = "old_name"  // Filename before a rename
	KeyNewName  = "new_name"  // Filename after a rename
	KeySubpath  = "subpath"   // Subpath template or rendered subpath
	KeyStore    = "store"     // Catalog backend: memory, badger, postgres

	// ========================================================================
	// Field & Intake
	// ========================================================================
	KeyField    = "field"    // Asset field handle
	KeySource   = "source"   // Intake source: inline, upload
	KeySize     = "size"     // Payload size in bytes
	KeyAccepted = "accepted" // Number of files accepted by intake
	KeyRejected = "rejected" // Number of files rejected by intake

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP = "client_ip" // Client IP address
	KeyActor    = "actor"     // Acting user id

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// RequestID returns a slog.Attr for the API request id
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Operation returns a slog.Attr for the logical operation name
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Volume returns a slog.Attr for a volume id
func Volume(id string) slog.Attr {
	return slog.String(KeyVolume, id)
}

// Folder returns a slog.Attr for a folder id
func Folder(id uuid.UUID) slog.Attr {
	return slog.String(KeyFolder, id.String())
}

// Path returns a slog.Attr for a folder path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Asset returns a slog.Attr for an asset id
func Asset(id uuid.UUID) slog.Attr {
	return slog.String(KeyAsset, id.String())
}

// Filename returns a slog.Attr for an asset filename
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// OldName returns a slog.Attr for the filename before a rename
func OldName(name string) slog.Attr {
	return slog.String(KeyOldName, name)
}

// NewName returns a slog.Attr for the filename after a rename
func NewName(name string) slog.Attr {
	return slog.String(KeyNewName, name)
}

// Subpath returns a slog.Attr for a subpath template or rendered subpath
func Subpath(s string) slog.Attr {
	return slog.String(KeySubpath, s)
}

// Store returns a slog.Attr for the catalog backend name
func Store(name string) slog.Attr {
	return slog.String(KeyStore, name)
}

// Field returns a slog.Attr for an asset field handle
func Field(handle string) slog.Attr {
	return slog.String(KeyField, handle)
}

// Source returns a slog.Attr for the intake source
func Source(s string) slog.Attr {
	return slog.String(KeySource, s)
}

// Size returns a slog.Attr for a payload size
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Accepted returns a slog.Attr for the accepted file count
func Accepted(n int) slog.Attr {
	return slog.Int(KeyAccepted, n)
}

// Rejected returns a slog.Attr for the rejected file count
func Rejected(n int) slog.Attr {
	return slog.Int(KeyRejected, n)
}

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// Actor returns a slog.Attr for the acting user id
func Actor(id string) slog.Attr {
	return slog.String(KeyActor, id)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error message.
// Returns an empty attr for nil errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}
