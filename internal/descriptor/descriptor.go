package descriptor

import (
	"sort"
	"sync"
)

// Status tracks where a watched file sits in its processing lifecycle.
type Status string

const (
	// StatusReady marks a file eligible for dispatch on the next sweep.
	StatusReady Status = "Ready"
	// StatusProcessing marks a file claimed by a running pipeline worker.
	StatusProcessing Status = "Processing"
	// StatusFinish marks a file whose analysis record exists in the store.
	StatusFinish Status = "Finish"
)

// Descriptor is the in-memory record tracking one input file. Descriptors are
// never persisted; the set is reconstructed from the directory listing plus
// store lookups on startup.
type Descriptor struct {
	Filename string
	Dir      string
	Status   Status
}

// Registry is a concurrency-safe descriptor set keyed by filename.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Upsert adds or refreshes a descriptor. It reports whether the filename was
// newly added. An existing descriptor keeps its current status; only the
// directory is refreshed.
func (r *Registry) Upsert(filename, dir string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.descriptors[filename]; ok {
		existing.Dir = dir
		return false
	}
	r.descriptors[filename] = &Descriptor{Filename: filename, Dir: dir, Status: status}
	return true
}

// Remove drops a descriptor, reporting whether it existed.
func (r *Registry) Remove(filename string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.descriptors[filename]; !ok {
		return false
	}
	delete(r.descriptors, filename)
	return true
}

// Get returns a copy of the descriptor for a filename.
func (r *Registry) Get(filename string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[filename]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// BeginProcessing claims a Ready descriptor for a worker via compare-and-swap.
// It returns false when the descriptor is absent or not Ready, so two sweeps
// can never dispatch the same file twice.
func (r *Registry) BeginProcessing(filename string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.descriptors[filename]
	if !ok || d.Status != StatusReady {
		return false
	}
	d.Status = StatusProcessing
	return true
}

// SetStatus forces a descriptor's status, reporting whether it changed.
func (r *Registry) SetStatus(filename string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.descriptors[filename]
	if !ok || d.Status == status {
		return false
	}
	d.Status = status
	return true
}

// Snapshot returns value copies of all descriptors sorted by filename.
func (r *Registry) Snapshot() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

// Len returns the descriptor count.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}
