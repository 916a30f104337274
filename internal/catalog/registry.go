package catalog

import (
	"sync"
	"time"
)

// Registry holds the session's connected data sources and active channels.
// All reads return copies; a generation in flight keeps working on the
// snapshot it took at submission time.
type Registry struct {
	mu       sync.RWMutex
	sources  []DataSource
	channels []Channel
}

func NewRegistry() *Registry {
	return &Registry{}
}

// ConnectDataSource adds a data source, or updates it in place when the id
// already exists.
func (r *Registry) ConnectDataSource(ds DataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sources {
		if r.sources[i].ID == ds.ID {
			r.sources[i] = ds
			return
		}
	}
	r.sources = append(r.sources, ds)
}

// DisconnectDataSource removes a data source by id. Returns false if absent.
func (r *Registry) DisconnectDataSource(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sources {
		if r.sources[i].ID == id {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return true
		}
	}
	return false
}

// AddChannel adds a channel, or updates it in place when the id already exists.
func (r *Registry) AddChannel(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.channels {
		if r.channels[i].ID == ch.ID {
			r.channels[i] = ch
			return
		}
	}
	r.channels = append(r.channels, ch)
}

// RemoveChannel removes a channel by id. Returns false if absent.
func (r *Registry) RemoveChannel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.channels {
		if r.channels[i].ID == id {
			r.channels = append(r.channels[:i], r.channels[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleChannel flips a channel between active and inactive. Returns the new
// status and false if the channel does not exist.
func (r *Registry) ToggleChannel(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.channels {
		if r.channels[i].ID == id {
			if r.channels[i].Status == ChannelActive {
				r.channels[i].Status = ChannelInactive
			} else {
				r.channels[i].Status = ChannelActive
			}
			return r.channels[i].Status, true
		}
	}
	return "", false
}

// DataSources returns a snapshot copy of the connected data sources.
func (r *Registry) DataSources() []DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DataSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Channels returns a snapshot copy of the session's channels.
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Channel, len(r.channels))
	copy(out, r.channels)
	return out
}

// HasDataSource reports whether a data source with the given id is connected.
func (r *Registry) HasDataSource(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.sources {
		if r.sources[i].ID == id {
			return true
		}
	}
	return false
}

// HasChannel reports whether a channel with the given id exists.
func (r *Registry) HasChannel(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.channels {
		if r.channels[i].ID == id {
			return true
		}
	}
	return false
}

// MarkSynced stamps LastSync on every connected data source.
func (r *Registry) MarkSynced(at time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.sources {
		if r.sources[i].Status == SourceConnected {
			t := at
			r.sources[i].LastSync = &t
			n++
		}
	}
	return n
}
