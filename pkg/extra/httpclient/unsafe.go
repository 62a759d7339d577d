package httpclient

import "unsafe"

// bytesToStringUnsafe reinterprets a byte slice as a string without a copy.
// Only safe when the backing slice's lifetime is pinned by the caller (e.g.
// a pooled ClientRequest/ClientResponse field) for as long as the string
// is read — it must not be mutated afterward.
func bytesToStringUnsafe(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// stringToBytesUnsafe reinterprets a string as a byte slice without a copy.
// The returned slice aliases s's backing array and must never be written to.
func stringToBytesUnsafe(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
