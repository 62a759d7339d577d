package httpwire

// ParseMethodID maps a request-line method token to its numeric ID in a
// single length-dispatched comparison, so the hot path never falls back
// to a byte-by-byte string compare. Returns MethodUnknown for anything
// not in the RFC 7231/5789 method set this engine understands.
func ParseMethodID(method []byte) uint8 {
	switch len(method) {
	case 3:
		if method[0] == 'G' && method[1] == 'E' && method[2] == 'T' {
			return MethodGET
		}
		if method[0] == 'P' && method[1] == 'U' && method[2] == 'T' {
			return MethodPUT
		}

	case 4:
		if method[0] == 'P' && method[1] == 'O' && method[2] == 'S' && method[3] == 'T' {
			return MethodPOST
		}
		if method[0] == 'H' && method[1] == 'E' && method[2] == 'A' && method[3] == 'D' {
			return MethodHEAD
		}

	case 5:
		if method[0] == 'P' && method[1] == 'A' && method[2] == 'T' && method[3] == 'C' && method[4] == 'H' {
			return MethodPATCH
		}
		if method[0] == 'T' && method[1] == 'R' && method[2] == 'A' && method[3] == 'C' && method[4] == 'E' {
			return MethodTRACE
		}

	case 6:
		if method[0] == 'D' && method[1] == 'E' && method[2] == 'L' &&
			method[3] == 'E' && method[4] == 'T' && method[5] == 'E' {
			return MethodDELETE
		}

	case 7:
		if method[0] == 'O' && method[1] == 'P' && method[2] == 'T' &&
			method[3] == 'I' && method[4] == 'O' && method[5] == 'N' && method[6] == 'S' {
			return MethodOPTIONS
		}
		if method[0] == 'C' && method[1] == 'O' && method[2] == 'N' &&
			method[3] == 'N' && method[4] == 'E' && method[5] == 'C' && method[6] == 'T' {
			return MethodCONNECT
		}
	}

	return MethodUnknown
}

// MethodString returns the canonical string form of a method ID.
func MethodString(id uint8) string {
	switch id {
	case MethodGET:
		return methodGETString
	case MethodPOST:
		return methodPOSTString
	case MethodPUT:
		return methodPUTString
	case MethodDELETE:
		return methodDELETEString
	case MethodPATCH:
		return methodPATCHString
	case MethodHEAD:
		return methodHEADString
	case MethodOPTIONS:
		return methodOPTIONSString
	case MethodCONNECT:
		return methodCONNECTString
	case MethodTRACE:
		return methodTRACEString
	default:
		return ""
	}
}

// MethodBytes returns the canonical byte-slice form of a method ID.
func MethodBytes(id uint8) []byte {
	switch id {
	case MethodGET:
		return methodGETBytes
	case MethodPOST:
		return methodPOSTBytes
	case MethodPUT:
		return methodPUTBytes
	case MethodDELETE:
		return methodDELETEBytes
	case MethodPATCH:
		return methodPATCHBytes
	case MethodHEAD:
		return methodHEADBytes
	case MethodOPTIONS:
		return methodOPTIONSBytes
	case MethodCONNECT:
		return methodCONNECTBytes
	case MethodTRACE:
		return methodTRACEBytes
	default:
		return nil
	}
}

// IsValidMethodID reports whether id is one of the known method IDs.
func IsValidMethodID(id uint8) bool {
	return id >= MethodGET && id <= MethodTRACE
}

// IsSafeMethod reports whether id is a "safe" method per RFC 7231 §4.2.1:
// one that a client can issue without expecting the origin server to
// take any action beyond retrieval, so it's permissible for proxies,
// caches, and crawlers to issue automatically.
func IsSafeMethod(id uint8) bool {
	switch id {
	case MethodGET, MethodHEAD, MethodOPTIONS, MethodTRACE:
		return true
	default:
		return false
	}
}

// IsIdempotentMethod reports whether repeating id against the same
// target has the same effect as a single request, per RFC 7231 §4.2.2.
// GET, HEAD, PUT, DELETE, OPTIONS and TRACE are idempotent; POST, PATCH,
// CONNECT and unknown method IDs are not.
func IsIdempotentMethod(id uint8) bool {
	switch id {
	case MethodGET, MethodHEAD, MethodPUT, MethodDELETE, MethodOPTIONS, MethodTRACE:
		return true
	default:
		return false
	}
}
