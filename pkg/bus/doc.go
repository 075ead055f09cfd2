// Package bus layers request/response over an asynchronous message bus.
//
// A request is an integration event published under its EventType. The
// client waits for exactly one reply correlated by a per-request id, bounded
// by a timeout. Every failure is returned as a *RequestError whose Kind tells
// the caller what happened; the client never retries or compensates.
//
// Messages travel as structured CloudEvents JSON.
package bus
