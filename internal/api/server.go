// Package api is the HTTP surface of the advisor: recommendations, triage,
// manual Q&A, solar lookups, the ERP proxy, sign-in and proposals.
package api

import (
	"context"
	"net/http"
	"time"

	"solar-advisor/internal/common/auth"
	"solar-advisor/internal/common/database"
	"solar-advisor/internal/common/erp"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recommender interface {
	Recommend(ctx context.Context, q models.QuestionnaireResponse) (*models.RecommendationResponse, error)
}

type Triager interface {
	Triage(ctx context.Context, req models.TriageRequest) (*models.TriageResponse, error)
}

type Answerer interface {
	Answer(ctx context.Context, req models.QuestionRequest) (*models.AnswerResponse, error)
}

type SolarLookup interface {
	Radiation(ctx context.Context, city string) (*models.SolarRadiation, error)
}

type ERP interface {
	FetchEntity(ctx context.Context, entity string, top, skip int) (erp.Record, error)
	FetchEntityByID(ctx context.Context, entity, id string) (erp.Record, error)
	FindCustomers(ctx context.Context, field, value string) ([]erp.Record, error)
	FindProduct(ctx context.Context, number string) (erp.Record, error)
}

type Quoter interface {
	Generate(ctx context.Context, req models.QuotationRequest) (*models.QuotationResult, error)
}

type Login interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, req models.VerifyCodeRequest) (*models.TokenResponse, error)
	Lookup(ctx context.Context, email string) (*models.Salesperson, error)
}

type ProposalStore interface {
	Create(ctx context.Context, p models.ProposalCreate) (*models.Proposal, error)
	List(ctx context.Context, skip, limit int) ([]models.Proposal, error)
	Get(ctx context.Context, id int64) (*models.Proposal, error)
	Update(ctx context.Context, id int64, u models.ProposalUpdate) (*models.Proposal, error)
	Delete(ctx context.Context, id int64) error
}

// Deps are the services behind the routes. Every field is required except
// ReadinessChecks.
type Deps struct {
	Recommender Recommender
	Triage      Triager
	Manual      Answerer
	Solar       SolarLookup
	ERP         ERP
	Quotation   Quoter
	Login       Login
	Proposals   ProposalStore
	Tokens      *auth.TokenManager

	// ReadinessChecks are pinged by /ready, keyed by dependency name.
	ReadinessChecks map[string]database.Pinger
}

type Options struct {
	ServiceName    string
	Version        string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type Server struct {
	Deps
	opts     Options
	validate *validator.Validate
	logger   logger.Logger
}

func NewServer(deps Deps, opts Options, log logger.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	return &Server{
		Deps:     deps,
		opts:     opts,
		validate: validator.New(),
		logger:   log,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors(s.opts.AllowedOrigins))
	r.Use(countRequests)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))

		r.Get("/solar/radiation", s.handleRadiation)
		r.Get("/erp/{entity}", s.handleERPEntity)
		r.Get("/erp/{entity}/{id}", s.handleERPEntityByID)

		r.Route("/api", func(r chi.Router) {
			r.Post("/recommend", s.handleRecommend)
			r.Post("/triage", s.handleTriage)
			r.Post("/question", s.handleQuestion)

			r.Get("/customers", s.handleCustomers)
			r.Get("/products/{number}", s.handleProduct)
			r.Get("/products/{number}/tax", s.handleProductTax)
			r.Post("/quotation", s.handleQuotation)

			r.Post("/auth/request-code", s.handleRequestCode)
			r.Post("/auth/verify-code", s.handleVerifyCode)
			r.With(s.requireToken).Get("/dashboard", s.handleDashboard)

			r.Route("/proposals", func(r chi.Router) {
				r.Post("/", s.handleCreateProposal)
				r.Get("/", s.handleListProposals)
				r.Get("/{id}", s.handleGetProposal)
				r.Put("/{id}", s.handleUpdateProposal)
				r.Delete("/{id}", s.handleDeleteProposal)
			})
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Solar Advisor API",
		"service": s.opts.ServiceName,
		"version": s.opts.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": s.opts.ServiceName})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.ReadinessChecks))
	ready := true
	for name, p := range s.ReadinessChecks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{"status": status, "checks": checks})
}
