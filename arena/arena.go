// Package arena implements the typed allocation domains the rest of Ember
// borrows memory from: REQUEST, RESPONSE, CACHE, STATIC and TASK. Each
// domain is a Kind with its own alloc/realloc/free/purge/stats operations,
// and the domain set is fixed for the lifetime of the process.
//
// Two backends satisfy the Allocator interface: MallocBackend (a shared
// sync.Pool-backed heap where Purge is a no-op) and MultiArenaBackend (one
// mmap-backed bump region per Kind, with real independent decay). Any
// allocation made through either backend must be freed through the same
// Kind's Free — allocations never cross arenas.
package arena

import "fmt"

// Kind names one of the five fixed lifetime domains.
type Kind int

const (
	// Request holds per-request scratch memory; purged when the request completes.
	Request Kind = iota
	// Response holds the response body/headers being built; purged with Request.
	Response
	// Cache holds data meant to persist across requests.
	Cache
	// Static holds data that effectively never changes after warmup.
	Static
	// Task holds memory owned by a background task, freed at task completion.
	Task

	numKinds = int(Task) + 1
)

func (k Kind) String() string {
	switch k {
	case Request:
		return "REQUEST"
	case Response:
		return "RESPONSE"
	case Cache:
		return "CACHE"
	case Static:
		return "STATIC"
	case Task:
		return "TASK"
	default:
		return "UNKNOWN"
	}
}

// Stats reports the bookkeeping counters for one arena Kind.
type Stats struct {
	Allocated int64 // cumulative bytes ever handed out
	Active    int64 // bytes currently outstanding (not yet freed/purged)
	Resident  int64 // bytes the backend is holding onto (>= Active)
}

// Allocator is the interface both backends satisfy. Allocator selection is
// an init-time parameter (Backend, below); once chosen it cannot change,
// matching the core's MALLOC|ARENA selection contract.
type Allocator interface {
	Alloc(kind Kind, size int) ([]byte, bool)
	Realloc(kind Kind, buf []byte, size int) ([]byte, bool)
	Free(kind Kind, buf []byte)
	Purge(kind Kind)
	Stats(kind Kind) Stats
}

// Backend selects which Allocator implementation New constructs.
type Backend int

const (
	// MallocBackendKind is the general-allocator fallback: all Kinds share
	// one heap and Purge is a no-op.
	MallocBackendKind Backend = iota
	// MultiArenaBackendKind gives each Kind an independent mmap-backed
	// region with real bulk-purge decay.
	MultiArenaBackendKind
)

// New constructs the Allocator selected by backend. The zero value of
// Backend (MallocBackendKind) is always safe to construct; MultiArenaBackendKind
// may fail to mmap its regions on platforms without anonymous mmap support,
// in which case an error is returned and callers should fall back to
// MallocBackendKind.
func New(backend Backend) (Allocator, error) {
	switch backend {
	case MallocBackendKind:
		return newMallocBackend(), nil
	case MultiArenaBackendKind:
		return newMultiArenaBackend()
	default:
		return nil, fmt.Errorf("arena: unknown backend %d", backend)
	}
}

func validKind(kind Kind) bool {
	return kind >= Request && kind <= Task
}
