package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HTTPServerSuite struct {
	suite.Suite
}

func TestHTTPServerSuite(t *testing.T) {
	suite.Run(t, new(HTTPServerSuite))
}

func (s *HTTPServerSuite) TestNewAppliesTimeouts() {
	handler := http.NewServeMux()
	srv := New(":8080", handler, 30*time.Second, 2*time.Minute)

	s.Equal(":8080", srv.Addr)
	s.Equal(30*time.Second, srv.WriteTimeout)
	s.Equal(2*time.Minute, srv.IdleTimeout)
	s.Equal(readHeaderTimeout, srv.ReadHeaderTimeout)
}
