// Package events carries domain events from services to interested handlers.
//
// Services emit events after their transaction commits, so a handler never
// observes a change that was rolled back. Delivery is synchronous and
// in-process; a failing handler is logged and does not undo the change.
package events
