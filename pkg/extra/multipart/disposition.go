package multipart

import "strings"

// dispositionParam extracts a quoted parameter (name=, filename=, ...) from
// a Content-Disposition header value.
func dispositionParam(header, param string) string {
	if header == "" {
		return ""
	}
	needle := param + "=\""
	idx := strings.Index(header, needle)
	if idx < 0 {
		return ""
	}
	rest := header[idx+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
