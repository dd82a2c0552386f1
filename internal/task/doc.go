// Package task implements background task processing: a persisted task queue
// drained by a worker pool, with startup recovery and stuck-task reset. The
// only task type today is structure analysis, which computes the base and
// surmise relation of an uploaded knowledge structure.
package task
