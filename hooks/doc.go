// Package hooks provides the Registry that dispatches run events to observers implementing
// the hook interfaces declared in package convo.
//
// Ready-made hooks (structured logging, console printing, event publishing) live in package
// loggers.
package hooks
