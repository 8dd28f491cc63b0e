package http11

// Header stores request/response headers inline to avoid heap allocation
// for the common case, ported from
// shockwave/pkg/shockwave/http11/header.go. Up to MaxHeaders entries live
// in fixed-size arrays; anything beyond that, or a value too large for
// inline storage, spills into an overflow map.
type Header struct {
	names  [MaxHeaders][MaxHeaderName]byte
	values [MaxHeaders][MaxHeaderValue]byte

	nameLens  [MaxHeaders]uint8
	valueLens [MaxHeaders]uint8

	count uint8

	overflow map[string]string
}

// Add appends a header. Names/values containing CR or LF are rejected
// (RFC 7230 §3.2 — this is the CRLF response/request-splitting guard).
func (h *Header) Add(name, value []byte) error {
	if len(name) > MaxHeaderName {
		return ErrHeaderTooLarge
	}
	if len(value) > 8192 {
		return ErrHeaderTooLarge
	}
	for _, b := range value {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}
	for _, b := range name {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}

	if h.count < MaxHeaders && len(value) <= MaxHeaderValue {
		idx := h.count
		copy(h.names[idx][:], name)
		copy(h.values[idx][:], value)
		h.nameLens[idx] = uint8(len(name))
		h.valueLens[idx] = uint8(len(value))
		h.count++
		return nil
	}

	if h.overflow == nil {
		h.overflow = make(map[string]string, 8)
	}
	h.overflow[string(name)] = string(value)
	return nil
}

// Get returns the header value, or nil if absent. Inline entries are
// matched case-insensitively; entries in the overflow map are matched only
// by exact name. The slice references internal storage and is valid only
// until the next Reset/Add/Set.
func (h *Header) Get(name []byte) []byte {
	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualCaseInsensitive(h.names[i][:h.nameLens[i]], name) {
			return h.values[i][:h.valueLens[i]]
		}
	}
	if h.overflow != nil {
		if val, ok := h.overflow[string(name)]; ok {
			return []byte(val)
		}
	}
	return nil
}

// GetString is Get with a string result, for callers that need to retain
// the value beyond the request lifetime.
func (h *Header) GetString(name []byte) string {
	val := h.Get(name)
	if val == nil {
		return ""
	}
	return string(val)
}

// Has reports whether name is present. Inline entries are matched
// case-insensitively; overflow entries only by exact name.
func (h *Header) Has(name []byte) bool {
	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualCaseInsensitive(h.names[i][:h.nameLens[i]], name) {
			return true
		}
	}
	if h.overflow != nil {
		_, ok := h.overflow[string(name)]
		return ok
	}
	return false
}

// Set replaces the value for name, adding it if absent.
func (h *Header) Set(name, value []byte) error {
	if len(name) > MaxHeaderName {
		return ErrHeaderTooLarge
	}
	if len(value) > 8192 {
		return ErrHeaderTooLarge
	}
	for _, b := range value {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}
	for _, b := range name {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}

	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualCaseInsensitive(h.names[i][:h.nameLens[i]], name) {
			if len(value) <= MaxHeaderValue {
				copy(h.values[i][:], value)
				h.valueLens[i] = uint8(len(value))
				return nil
			}
			nameStr := string(h.names[i][:h.nameLens[i]])
			if i < h.count-1 {
				copy(h.names[i:], h.names[i+1:])
				copy(h.values[i:], h.values[i+1:])
				copy(h.nameLens[i:], h.nameLens[i+1:])
				copy(h.valueLens[i:], h.valueLens[i+1:])
			}
			h.count--
			if h.overflow == nil {
				h.overflow = make(map[string]string, 8)
			}
			h.overflow[nameStr] = string(value)
			return nil
		}
	}

	if h.overflow != nil {
		nameStr := string(name)
		if _, ok := h.overflow[nameStr]; ok {
			h.overflow[nameStr] = string(value)
			return nil
		}
	}

	return h.Add(name, value)
}

// Del removes a header by name (case-insensitive), a no-op if absent.
func (h *Header) Del(name []byte) {
	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualCaseInsensitive(h.names[i][:h.nameLens[i]], name) {
			if i < h.count-1 {
				copy(h.names[i:], h.names[i+1:])
				copy(h.values[i:], h.values[i+1:])
				copy(h.nameLens[i:], h.nameLens[i+1:])
				copy(h.valueLens[i:], h.valueLens[i+1:])
			}
			h.count--
			return
		}
	}
	if h.overflow != nil {
		delete(h.overflow, string(name))
	}
}

// Len returns the total number of headers, inline plus overflow.
func (h *Header) Len() int {
	total := int(h.count)
	if h.overflow != nil {
		total += len(h.overflow)
	}
	return total
}

// Reset clears the header set for pooled reuse.
func (h *Header) Reset() {
	h.count = 0
	h.overflow = nil
}

// VisitAll calls visitor for every header, inline then overflow, stopping
// early if visitor returns false.
func (h *Header) VisitAll(visitor func(name, value []byte) bool) {
	for i := uint8(0); i < h.count; i++ {
		name := h.names[i][:h.nameLens[i]]
		value := h.values[i][:h.valueLens[i]]
		if !visitor(name, value) {
			return
		}
	}
	if h.overflow != nil {
		for name, value := range h.overflow {
			if !visitor([]byte(name), []byte(value)) {
				return
			}
		}
	}
}

func bytesEqualCaseInsensitive(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

// bytesHasPrefixCaseInsensitive reports whether b starts with prefix,
// ignoring case — used to match a Content-Type header's media type while
// ignoring any trailing "; charset=..." parameters.
func bytesHasPrefixCaseInsensitive(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	return bytesEqualCaseInsensitive(b[:len(prefix)], prefix)
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
