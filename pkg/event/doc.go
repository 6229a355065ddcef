// Package event provides the synchronous listener registry used by models,
// views, selections and undo managers.
//
// A [Source] calls listeners in registration order on the calling
// goroutine. Listeners may fire further events or register listeners while
// being dispatched; the set of listeners is fixed when [Source.Fire]
// starts.
package event
