package httpserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	ticketHTTP "asana-ticket-numbering/internal/ticket/delivery/http"
	"asana-ticket-numbering/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	// Ticket domain
	ticketHandler ticketHTTP.Handler

	// readiness probe of the backing store
	ready func(ctx context.Context) error
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	// Ticket domain
	TicketHandler ticketHTTP.Handler

	// ReadyCheck reports whether the backing store is reachable. Optional.
	ReadyCheck func(ctx context.Context) error
}

// New creates a new HTTPServer instance and maps its routes.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:             logger,
		gin:           gin.New(),
		port:          cfg.Port,
		mode:          cfg.Mode,
		environment:   cfg.Environment,
		ticketHandler: cfg.TicketHandler,
		ready:         cfg.ReadyCheck,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

// Handler exposes the gin engine, mainly for tests.
func (srv *HTTPServer) Handler() *gin.Engine {
	return srv.gin
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.ticketHandler == nil {
		return errors.New("ticket handler is required")
	}
	return nil
}
