package httpclient

// ClientHeaders is the header storage type ClientRequest and ClientResponse
// embed; it's an alias so callers that type-asserted the old inline-array
// layout during the CompactHeaders migration keep compiling.
type ClientHeaders = CompactHeaders
