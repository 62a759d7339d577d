package httpserver

import (
	"sync"

	"github.com/sebastien/extra/pkg/extra/httpwire"
)

var (
	requestAdapterPool = sync.Pool{
		New: func() interface{} { return &requestAdapter{} },
	}
	responseWriterAdapterPool = sync.Pool{
		New: func() interface{} { return &responseWriterAdapter{} },
	}
	headerAdapterPool = sync.Pool{
		New: func() interface{} { return &headerAdapter{} },
	}
	adapterPairPool = sync.Pool{
		New: func() interface{} { return &adapterPair{} },
	}
)

// adapterPair holds the LegacyHandler-path adapters for one in-flight
// request, embedded rather than heap-allocated per request.
type adapterPair struct {
	reqAdapter requestAdapter
	rwAdapter  responseWriterAdapter
}

func (ap *adapterPair) Reset() {
	ap.reqAdapter.req = nil
	ap.rwAdapter.rw = nil
}

func (ap *adapterPair) Setup(req *httpwire.Request, rw *httpwire.ResponseWriter) {
	ap.reqAdapter.req = req
	ap.rwAdapter.rw = rw
}
