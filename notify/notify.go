// Package notify carries transient user-facing messages. The session
// coordinator reports operation outcomes here; whoever owns the screen
// polls visibility and renders the current message.
package notify

import (
	"sync"
	"time"
)

// Notification displays temporary messages on screen
type Notification struct {
	mu        sync.Mutex
	message   string
	startTime time.Time
	duration  time.Duration

	// sink, when set, observes every shown message. Used by headless
	// front-ends that log instead of drawing.
	sink func(message string)
}

// NewNotification creates a new notification system
func NewNotification() *Notification {
	return &Notification{}
}

// SetSink registers an observer for shown messages.
func (n *Notification) SetSink(sink func(message string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sink = sink
}

// Show displays a notification message
func (n *Notification) Show(message string, duration time.Duration) {
	n.mu.Lock()
	n.message = message
	n.startTime = time.Now()
	n.duration = duration
	sink := n.sink
	n.mu.Unlock()

	if sink != nil {
		sink(message)
	}
}

// ShowDefault displays a notification with default 3 second duration
func (n *Notification) ShowDefault(message string) {
	n.Show(message, 3*time.Second)
}

// ShowShort displays a notification with 1 second duration (for gameplay)
func (n *Notification) ShowShort(message string) {
	n.Show(message, 1*time.Second)
}

// IsVisible returns whether the notification is currently visible
func (n *Notification) IsVisible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == "" {
		return false
	}
	return time.Since(n.startTime) < n.duration
}

// Message returns the current message text, visible or not.
func (n *Notification) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Clear removes the current notification
func (n *Notification) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = ""
}
