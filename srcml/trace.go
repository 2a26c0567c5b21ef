package srcml

// TraceFunc receives one call per construct with alternating label and
// value pairs. Values are copies and safe to retain; the hook is meant
// for diagnostics, the counters do not depend on it.
type TraceFunc func(event string, pairs ...string)
