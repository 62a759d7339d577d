package httpwire

import "bytes"

// Header stores HTTP header fields inline, keyed by their canonical
// Kebab-Case rendering (NormalizeHeaderName), so lookups are a plain
// byte-equal scan instead of a case-insensitive compare on every probe —
// the normalization happens once, at Add/Set time, rather than on every
// Get. Up to MaxHeaders fields live inline with zero heap allocation;
// beyond that (or for values over MaxHeaderValue bytes) entries spill
// into the overflow map.
type Header struct {
	names  [MaxHeaders][MaxHeaderName]byte
	values [MaxHeaders][MaxHeaderValue]byte

	nameLens  [MaxHeaders]uint8
	valueLens [MaxHeaders]uint8

	count uint8

	overflow map[string]string
}

// Add appends a header field, after canonicalizing name to Kebab-Case.
// Rejects field names/values containing CR or LF (RFC 7230 §3.2;
// otherwise a handler could inject extra header lines or split the
// response — CRLF in a Set-Cookie or Location value is the classic
// response-splitting vector).
func (h *Header) Add(name, value []byte) error {
	canon := NormalizeHeaderName(name)
	canonBytes := []byte(canon)

	if len(canonBytes) > MaxHeaderName {
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
		copy(h.names[idx][:], canonBytes)
		copy(h.values[idx][:], value)
		h.nameLens[idx] = uint8(len(canonBytes))
		h.valueLens[idx] = uint8(len(value))
		h.count++
		return nil
	}

	if h.overflow == nil {
		h.overflow = make(map[string]string, 8)
	}
	h.overflow[canon] = string(value)
	return nil
}

// Get retrieves a header value by name, in any casing. Returns nil if
// absent. The returned slice aliases internal storage and is valid only
// until the next Add/Set/Reset.
func (h *Header) Get(name []byte) []byte {
	canon := NormalizeHeaderName(name)
	canonBytes := []byte(canon)

	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(canonBytes)) && bytes.Equal(h.names[i][:h.nameLens[i]], canonBytes) {
			return h.values[i][:h.valueLens[i]]
		}
	}

	if h.overflow != nil {
		if val, ok := h.overflow[canon]; ok {
			return []byte(val)
		}
	}

	return nil
}

// GetString retrieves a header value as a string, or "" if absent.
func (h *Header) GetString(name []byte) string {
	val := h.Get(name)
	if val == nil {
		return ""
	}
	return string(val)
}

// Has reports whether a header is present, in any casing.
func (h *Header) Has(name []byte) bool {
	return h.Get(name) != nil
}

// Set replaces (or adds) a header's value.
func (h *Header) Set(name, value []byte) error {
	canon := NormalizeHeaderName(name)
	canonBytes := []byte(canon)

	if len(canonBytes) > MaxHeaderName {
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
		if h.nameLens[i] == uint8(len(canonBytes)) && bytes.Equal(h.names[i][:h.nameLens[i]], canonBytes) {
			if len(value) <= MaxHeaderValue {
				copy(h.values[i][:], value)
				h.valueLens[i] = uint8(len(value))
				return nil
			}

			// Moving a large value in: evict the inline slot, spill to overflow.
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
			h.overflow[canon] = string(value)
			return nil
		}
	}

	if h.overflow != nil {
		if _, ok := h.overflow[canon]; ok {
			h.overflow[canon] = string(value)
			return nil
		}
	}

	return h.Add(name, value)
}

// Del removes a header by name, in any casing.
func (h *Header) Del(name []byte) {
	canon := NormalizeHeaderName(name)
	canonBytes := []byte(canon)

	for i := uint8(0); i < h.count; i++ {
		if h.nameLens[i] == uint8(len(canonBytes)) && bytes.Equal(h.names[i][:h.nameLens[i]], canonBytes) {
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
		delete(h.overflow, canon)
	}
}

// Len returns the total number of header fields stored.
func (h *Header) Len() int {
	total := int(h.count)
	if h.overflow != nil {
		total += len(h.overflow)
	}
	return total
}

// Reset clears all headers for reuse.
func (h *Header) Reset() {
	h.count = 0
	h.overflow = nil
}

// VisitAll calls visitor for every header field, name already rendered
// in canonical Kebab-Case. Stops early if visitor returns false.
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

// bytesEqualCaseInsensitive compares two byte slices ignoring ASCII
// case. Used outside Header for comparing header *values* such as
// "Connection: close" or "Transfer-Encoding: chunked", which RFC 7230
// also treats case-insensitively but which aren't header names subject
// to Kebab-Case canonicalization.
func bytesEqualCaseInsensitive(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLowerASCII(a[i]) != toLowerASCII(b[i]) {
			return false
		}
	}
	return true
}
