// Package events decouples services from the background task layer. Services
// emit TaskRequestEvents describing work to be done; the task layer registers
// handlers that turn those events into persisted tasks.
package events
