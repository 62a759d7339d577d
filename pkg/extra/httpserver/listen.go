package httpserver

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sebastien/extra/pkg/extra/httpserver/socket"
	"github.com/sebastien/extra/pkg/extra/httpwire"
)

// httpServer is the concrete Server implementation: an accept loop handing
// each connection to httpwire.Connection, which owns the per-connection
// keep-alive/pipelining request loop (C5). TLS termination is intentionally
// not implemented here — server-side TLS is out of scope for this toolkit.
type httpServer struct {
	*BaseServer
	sharedHandler httpwire.Handler
	log           *zap.Logger
}

// NewServer creates a Server bound to config. If config.Logger is nil, a
// stderr JSON logger is created.
func NewServer(config Config) Server {
	base := NewBaseServer(config)
	logger := config.Logger
	if logger == nil {
		logger = NewLogger("")
	}

	srv := &httpServer{BaseServer: base, log: logger}

	if config.Handler != nil {
		handler := config.Handler
		srv.sharedHandler = func(req *httpwire.Request, rw *httpwire.ResponseWriter) (err error) {
			srv.stats.TotalRequests.Add(1)
			if srv.config.EnableStats {
				srv.stats.LastRequestTime.Store(time.Now())
			}
			defer func() {
				if r := recover(); r != nil {
					srv.stats.RequestErrors.Add(1)
					err = writeRecoveredError(rw, r)
				}
			}()
			handler(rw, req)
			if req.Close {
				return fmt.Errorf("connection close requested")
			}
			return nil
		}
	}

	return srv
}

// writeRecoveredError turns a recovered handler panic into a response. A
// *httpwire.RequestError is the deliberate short-circuit from spec.md §7
// (handler-raised status/content-type/payload); anything else is an
// unexpected failure and gets a canned 500, but only if nothing has been
// written to the wire yet — otherwise the connection is closed to signal
// the failure to the peer, per spec.md's handler-exception propagation.
func writeRecoveredError(rw *httpwire.ResponseWriter, recovered any) error {
	if reqErr, ok := recovered.(*httpwire.RequestError); ok {
		if !rw.HeaderWritten() {
			rw.Header().Set([]byte("Content-Type"), []byte(reqErr.ContentType))
			rw.Header().Set([]byte("Content-Length"), []byte(strconv.Itoa(len(reqErr.Payload))))
			rw.WriteHeader(reqErr.Status)
			rw.Write(reqErr.Payload)
			return nil
		}
		return fmt.Errorf("request error after headers written: %w", reqErr)
	}

	if !rw.HeaderWritten() {
		rw.WriteError(500, "Internal Server Error")
		return nil
	}
	return fmt.Errorf("%w: %v", httpwire.ErrInternal, recovered)
}

// ListenAndServe listens on the configured address and serves requests.
func (s *httpServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until the server is shut down.
func (s *httpServer) Serve(l net.Listener) error {
	s.listener = l
	defer l.Close()

	if err := socket.ApplyListener(l, socket.ProfileForBufferSizes(s.config.ReadBufferSize, s.config.WriteBufferSize)); err != nil {
		s.log.Warn("socket tuning failed on listener", zap.Error(err))
	}

	for {
		if s.shutdown.Load() {
			return nil
		}

		if s.connSem != nil {
			select {
			case s.connSem <- struct{}{}:
			case <-s.done:
				return nil
			}
		}

		conn, err := l.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			s.stats.ConnectionErrors.Add(1)
			if s.connSem != nil {
				<-s.connSem
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		s.stats.TotalConnections.Add(1)
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *httpServer) handleConnection(netConn net.Conn) {
	defer s.wg.Done()
	defer netConn.Close()
	if s.connSem != nil {
		defer func() { <-s.connSem }()
	}

	connID := uuid.NewString()
	log := s.log.With(zap.String("conn_id", connID), zap.String("remote", netConn.RemoteAddr().String()))

	if err := socket.Apply(netConn, socket.ProfileForBufferSizes(s.config.ReadBufferSize, s.config.WriteBufferSize)); err != nil {
		log.Debug("socket tuning failed on connection", zap.Error(err))
	}

	s.trackConnection(netConn)
	defer s.untrackConnection(netConn)

	connConfig := httpwire.ConnectionConfig{
		KeepAliveTimeout: s.config.IdleTimeout,
		MaxRequests:      s.config.MaxKeepAliveRequests,
		ReadBufferSize:   s.config.ReadBufferSize,
		WriteBufferSize:  s.config.WriteBufferSize,
	}
	if s.config.DisableKeepalive {
		connConfig.MaxRequests = 1
	}

	if s.config.ReadTimeout > 0 {
		netConn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}
	if s.config.WriteTimeout > 0 {
		netConn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}

	var handler httpwire.Handler
	if s.sharedHandler != nil {
		handler = s.sharedHandler
	} else if s.config.LegacyHandler != nil {
		var adapters adapterPair
		handler = func(req *httpwire.Request, rw *httpwire.ResponseWriter) (err error) {
			s.stats.TotalRequests.Add(1)
			if s.config.EnableStats {
				s.stats.LastRequestTime.Store(time.Now())
			}
			defer func() {
				if r := recover(); r != nil {
					s.stats.RequestErrors.Add(1)
					err = writeRecoveredError(rw, r)
				}
			}()
			adapters.Setup(req, rw)
			s.config.LegacyHandler.ServeHTTP(&adapters.rwAdapter, &adapters.reqAdapter)
			adapters.Reset()
			if req.Close {
				return fmt.Errorf("connection close requested")
			}
			return nil
		}
	} else {
		log.Error("no handler configured, closing connection")
		return
	}

	conn := httpwire.NewConnection(netConn, connConfig, handler)
	defer conn.Close()

	log.Debug("connection accepted")
	if err := conn.Serve(); err != nil {
		s.stats.RequestErrors.Add(1)
		log.Info("connection closed with error", zap.Error(err), zap.Int("requests", conn.RequestCount()))
	} else {
		log.Debug("connection closed", zap.Int("requests", conn.RequestCount()))
	}
}
