package arena

// BridgeAllocator is the separate allocator spec §4.A requires for objects
// that cross into the scripting bridge collaborator: it must bypass arenas
// entirely, since the bridge's own garbage collector may retain references
// to these objects past the point an owning request's arenas are purged.
//
// It is deliberately a plain heap allocator with no pooling: pooling would
// reintroduce exactly the reuse-after-purge hazard this type exists to
// avoid.
type BridgeAllocator struct{}

// NewBridgeAllocator constructs the bridge-side allocator. It carries no
// state; every call is an independent heap allocation.
func NewBridgeAllocator() *BridgeAllocator {
	return &BridgeAllocator{}
}

// Alloc returns a freshly heap-allocated buffer of the requested size. The
// returned slice is owned by the caller (and, transitively, by whatever
// bridge collaborator it is handed to) for as long as it holds a
// reference — Ember's own arenas never track or purge it.
func (BridgeAllocator) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	return make([]byte, size)
}
