// Package events decouples services that request background work from the
// task machinery that executes it. Services emit TaskRequestEvents through
// an EventEmitter; handlers registered on the emitter turn the events into
// queued tasks. Neither side imports the other.
package events
