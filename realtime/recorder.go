package realtime

import "sync"

// Event is one publish captured by Recorder.
type Event struct {
	Room    string
	Name    string
	Payload any
}

// Recorder is a Publisher that keeps everything it is given. Used by tests and
// by the seed command, which has no clients to notify.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(room, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Room: room, Name: event, Payload: payload})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Find returns the events published to room under name.
func (r *Recorder) Find(room, name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Room == room && e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
