// Package log provides a minimal structured logging abstraction.
//
// This package defines a Logger interface that can be implemented by
// any logging backend. A zerolog-backed adapter and a no-op logger are
// provided. The rest of the codebase depends only on the interface, so
// embedding applications can plug in their own logger.
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type myLogger struct{ l *zap.Logger }
//
//	func (m myLogger) Info(msg string, fields ...log.Field) { ... }
package log
