// Package messaging defines the queue contract used to feed kernel events to
// asynchronous consumers.
package messaging
