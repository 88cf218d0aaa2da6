package nestform

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/G-Node/nestform/nestform/db"
	"github.com/G-Node/nestform/nestform/form"
	"github.com/G-Node/nestform/nestform/web"
	"github.com/G-Node/nestform/nestform/worker"
)

// Keyword arguments passed by the service to the Save of every submitted
// form.
const (
	// KwargUser holds the name of the logged in user (string).
	KwargUser = "user"
	// KwargDB holds the *db.Connection of the service.
	KwargDB = "db"
)

// Service represents a full service which contains a web server, a database
// for saved forms, jobs, and sessions, and a worker that runs the
// post-submission jobs.
type Service struct {
	Name    string
	web     *web.Server
	db      *db.Connection
	worker  *worker.Worker
	log     *log.Logger
	factory form.Factory
	Config  *Config
}

// NewService creates a new Service for the form created by factory, running
// action for every saved submission.  The form is constructed once, without
// data, so that configuration errors of nested forms are returned here.
func NewService(name string, factory form.Factory, action worker.JobAction, config Config) (*Service, error) {
	if factory == nil {
		return nil, fmt.Errorf("nil form factory is invalid")
	}
	if _, err := factory(nil, ""); err != nil {
		return nil, fmt.Errorf("constructing form %q: %w", name, err)
	}

	config.SetDefaults()
	srv := new(Service)
	srv.Name = name
	srv.Config = &config
	srv.factory = factory
	srv.log = log.New(os.Stderr, "", log.LstdFlags)

	srv.log.Print("Initialising database")
	conn, err := db.New(config.DBPath)
	if err != nil {
		return nil, err
	}
	conn.Debug(config.Debug)
	srv.db = conn

	srv.worker = worker.New(srv.db, config.QueueLength)
	srv.worker.Action = action

	srv.web = web.New(config.Port)
	srv.setupWebRoutes()

	return srv, nil
}

// SetLogger sets the logger of the service, its worker, and its web server.
func (srv *Service) SetLogger(logger *log.Logger) {
	srv.log = logger
	srv.worker.SetLogger(logger)
	srv.web.SetLogger(logger)
}

// DB returns the database connection of the service.
func (srv *Service) DB() *db.Connection {
	return srv.db
}

// Start the service (worker and web server).
func (srv *Service) Start() error {
	if srv.worker.Action == nil {
		return fmt.Errorf("nil job function is invalid")
	}

	srv.log.Print("Starting worker")
	srv.worker.Start()

	srv.log.Print("Starting web service")
	srv.web.Start()
	srv.log.Print("Web server started")
	return nil
}

// WaitForInterrupt blocks until the service receives an interrupt signal (SIGINT).
func (srv *Service) WaitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
}

// Stop the service by gracefully shutting down the web service, stopping the
// worker, and closing the database connection, in that order.  Stop must only
// be called on a started service.
func (srv *Service) Stop() {
	srv.log.Print("Stopping web service")
	srv.web.Stop()

	srv.log.Print("Stopping worker queue")
	srv.worker.Stop()

	srv.log.Print("Closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.Printf("Error closing database: %v", err)
	}
	srv.log.Print("Service stopped")
}

// Close releases the database of a service that was never started.
func (srv *Service) Close() error {
	return srv.db.Close()
}
