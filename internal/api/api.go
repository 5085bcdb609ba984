package api

import (
	"context"
	"fmt"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

// @title           Employee Registry
// @version         1.0
// @description     New-employee onboarding: form sessions with per-field validation, a uniqueness-checked record store and lifecycle events.
//
// @BasePath  /
// @schemes   http
// @accept    json
// @produce   json

type EmployeeStore interface {
	GetAll(ctx context.Context) []dto.EmployeeRecord
	GetByID(ctx context.Context, id string) (dto.EmployeeRecord, error)
	FindByUniqueKey(ctx context.Context, key dto.UniqueKey, value string) (dto.EmployeeRecord, error)
	Search(ctx context.Context, query string) []dto.EmployeeRecord
	ByDepartment(ctx context.Context, department string) []dto.EmployeeRecord
	Update(ctx context.Context, id string, patch dto.EmployeePatch) (dto.EmployeeRecord, error)
	Delete(ctx context.Context, id string) (dto.EmployeeRecord, error)
	Count() int
	Health() error
}

type Submitter interface {
	Submit(ctx context.Context, f *form.Form) (dto.EmployeeRecord, error)
}

type EventsRepository interface {
	ListEvents(ctx context.Context, limit, offset int) ([]dto.KafkaEvent, error)
	ListDLQ(ctx context.Context, limit, offset int) ([]dto.KafkaDLQ, error)
	ResetAll(ctx context.Context) error
}

type Producer interface {
	PublishCreated(ctx context.Context, rec dto.EmployeeRecord) error
	PublishUpdated(ctx context.Context, rec dto.EmployeeRecord) error
	PublishDeleted(ctx context.Context, rec dto.EmployeeRecord) error
}

type ServiceDeps struct {
	Port int

	// FormIdleTTL and MaxForms bound the in-memory form sessions; zero
	// selects the defaults.
	FormIdleTTL time.Duration
	MaxForms    int

	Store     EmployeeStore
	Submitter Submitter
	Validator *validation.Validator

	// EventsRepo and Producer are nil when Kafka is disabled.
	EventsRepo EventsRepository
	Producer   Producer

	Log zerolog.Logger
}

type Service struct {
	r      *router.Router
	server *fasthttp.Server
	port   int

	store     EmployeeStore
	submitter Submitter
	validator *validation.Validator
	forms     *formSessions
	events    EventsRepository
	producer  Producer
	log       zerolog.Logger
}

func NewService(d ServiceDeps) *Service {
	rt := router.New()

	s := &Service{
		r:         rt,
		port:      d.Port,
		store:     d.Store,
		submitter: d.Submitter,
		validator: d.Validator,
		forms:     newFormSessions(func() *form.Form { return form.New(d.Validator) }, d.FormIdleTTL, d.MaxForms),
		events:    d.EventsRepo,
		producer:  d.Producer,
		log:       d.Log.With().Str("component", "API").Logger(),
	}

	s.mountRoutes()

	s.server = &fasthttp.Server{
		Handler:            RecoveryMiddleware(LoggingMiddleware(CORS(s.r.Handler))),
		Name:               "employee-registry-api",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		MaxRequestBodySize: 2 << 20, // 2 MiB
	}

	return s
}

func (s *Service) Handler() fasthttp.RequestHandler {
	return s.server.Handler
}

func (s *Service) Start(ctx context.Context) error {
	s.log.Info().Int("port", s.port).Msg("Starting employee registry API")

	emergencyShutdown := make(chan error, 1)
	go func() {
		emergencyShutdown <- s.server.ListenAndServe(fmt.Sprintf(":%d", s.port))
	}()

	select {
	case <-ctx.Done():
		return s.server.Shutdown()
	case e := <-emergencyShutdown:
		return e
	}
}

func (s *Service) mountRoutes() {
	// Employees
	s.r.GET("/employees", s.listEmployees)
	s.r.POST("/employees", s.createEmployee)
	s.r.GET("/employees/{id}", s.getEmployee)
	s.r.PUT("/employees/{id}", s.updateEmployee)
	s.r.DELETE("/employees/{id}", s.deleteEmployee)
	s.r.GET("/lookup", s.lookupEmployee)
	s.r.GET("/departments/{department}/employees", s.listDepartment)
	s.r.GET("/options", s.options)

	// Form sessions
	s.r.POST("/forms", s.createForm)
	s.r.GET("/forms/{id}", s.getForm)
	s.r.PUT("/forms/{id}/fields", s.setFormFields)
	s.r.PUT("/forms/{id}/resume", s.setFormResume)
	s.r.DELETE("/forms/{id}/resume", s.clearFormResume)
	s.r.POST("/forms/{id}/submit", s.submitForm)
	s.r.DELETE("/forms/{id}", s.deleteForm)

	// Events/DLQ
	s.r.GET("/events", s.listEvents)
	s.r.GET("/dlq", s.listDLQ)

	// Admin & Health
	s.r.GET("/health", s.healthHandler)
	s.r.GET("/metrics", metricsHandler)
	s.r.POST("/admin/reset", s.resetHandler)
}
