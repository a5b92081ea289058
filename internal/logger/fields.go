package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so records from the
// loader manager, the dispatcher and individual adapters can be correlated.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID
	KeySpanID  = "span_id"  // OpenTelemetry span ID

	// Loader / adapter
	KeyTag      = "tag"      // adapter tag: host, mock, goscript, wasm, ...
	KeyHandle   = "handle"   // handle identifier produced by a load operation
	KeyPath     = "path"     // script or package path
	KeyScope    = "scope"    // scope name
	KeyChildren = "children" // number of child handles

	// Dispatch
	KeyFunction  = "function"  // function or method name
	KeyClass     = "class"     // class name
	KeyArgc      = "argc"      // number of call arguments
	KeyKind      = "kind"      // value kind tag
	KeyFromKind  = "from_kind" // coercion source kind
	KeyToKind    = "to_kind"   // coercion destination kind
	KeyAsync     = "async"     // async function flag
	KeySignature = "signature" // rendered signature

	// Operation metadata
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyPID        = "pid"         // process id (fork safety)
)

// Tag returns a slog.Attr for an adapter tag
func Tag(tag string) slog.Attr {
	return slog.String(KeyTag, tag)
}

// Handle returns a slog.Attr for a load handle identifier
func Handle(id string) slog.Attr {
	return slog.String(KeyHandle, id)
}

// Path returns a slog.Attr for a script or package path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Function returns a slog.Attr for a function or method name
func Function(name string) slog.Attr {
	return slog.String(KeyFunction, name)
}

// Class returns a slog.Attr for a class name
func Class(name string) slog.Attr {
	return slog.String(KeyClass, name)
}

// Argc returns a slog.Attr for the argument count of a call
func Argc(n int) slog.Attr {
	return slog.Int(KeyArgc, n)
}

// Kind returns a slog.Attr for a value kind tag
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// PID returns a slog.Attr for a process id
func PID(pid int) slog.Attr {
	return slog.Int(KeyPID, pid)
}
