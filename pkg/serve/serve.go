// Package serve exposes the gaze command protocol over HTTP with fiber.
// Every request is turned into a command line and submitted to the
// controller, so HTTP clients see exactly what the serial console sees.
package serve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zoobzio/gaze"
)

// DefaultTimeout bounds how long a request waits for its command. A
// reload holds the controller for its whole duration.
const DefaultTimeout = 5 * time.Second

// Submitter queues a command line and returns its response lines.
// *gaze.Controller satisfies it.
type Submitter interface {
	Submit(ctx context.Context, line string) ([]string, error)
}

// Response is the JSON body of every reply.
type Response struct {
	Lines []string `json:"lines"`
	Error string   `json:"error,omitempty"`
}

// CommandRequest is the JSON body accepted by POST /command.
type CommandRequest struct {
	Command string `json:"command"`
}

// Server is the HTTP surface.
type Server struct {
	app     *fiber.App
	ctrl    Submitter
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout sets how long a request waits for its command.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// New creates a Server that submits to ctrl.
func New(ctrl Submitter, opts ...Option) *Server {
	s := &Server{
		app:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		ctrl:    ctrl,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app.Get("/status", s.fixed("STATUS"))
	s.app.Get("/moods", s.fixed("MOOD:list"))
	s.app.Post("/moods/:name", s.switchMood)
	s.app.Post("/command", s.command)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for active requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) fixed(line string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.submit(c, line)
	}
}

func (s *Server) switchMood(c *fiber.Ctx) error {
	return s.submit(c, "MOOD:"+c.Params("name"))
}

func (s *Server) command(c *fiber.Ctx) error {
	var line string
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req CommandRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Response{Error: "invalid JSON"})
		}
		line = req.Command
	} else {
		line = strings.TrimRight(string(c.Body()), "\r\n")
	}
	return s.submit(c, line)
}

func (s *Server) submit(c *fiber.Ctx, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return c.Status(fiber.StatusBadRequest).JSON(Response{Error: "one command per request"})
	}
	if len(line) > gaze.MaxLineLength {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Lines: []string{"ERROR:LINE_TOO_LONG"},
			Error: gaze.ErrLineTooLong.Error(),
		})
	}
	if strings.TrimSpace(line) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Response{Error: "empty command"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	lines, err := s.ctrl.Submit(ctx, line)
	switch {
	case errors.Is(err, gaze.ErrControllerStopped):
		return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(Response{Error: err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(Response{Error: err.Error()})
	}

	if lines == nil {
		lines = []string{}
	}
	status := fiber.StatusOK
	if len(lines) > 0 && strings.HasPrefix(lines[0], "UNKNOWN:") {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(Response{Lines: lines})
}
