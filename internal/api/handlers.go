package api

import (
	"net/http"
	"strconv"
	"strings"

	"solar-advisor/internal/common/auth"
	"solar-advisor/internal/common/erp"
	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/login"
	"solar-advisor/internal/models"
	"solar-advisor/internal/quotation"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var q models.QuestionnaireResponse
	if err := s.decode(r, &q, apperrors.NewQuestionnaireInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.Recommender.Recommend(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req models.TriageRequest
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.Triage.Triage(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.Manual.Answer(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRadiation(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		s.writeError(w, r, apperrors.NewRequestInvalidError("city query parameter is required"))
		return
	}

	resp, err := s.Solar.Radiation(r.Context(), city)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleERPEntity(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	top, err := intParam(r, "top", 100)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.ERP.FetchEntity(r.Context(), entity, top, skip)
	if err != nil {
		s.writeError(w, r, erpError(entity, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleERPEntityByID(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	rec, err := s.ERP.FetchEntityByID(r.Context(), entity, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, erpError(entity, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	value := r.URL.Query().Get("value")
	if value == "" {
		s.writeError(w, r, apperrors.NewRequestInvalidError("value query parameter is required"))
		return
	}

	customers, err := s.ERP.FindCustomers(r.Context(), field, value)
	if err != nil {
		s.writeError(w, r, erpError(erp.EntityCustomers, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": customers})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	product, err := s.ERP.FindProduct(r.Context(), number)
	if err != nil {
		s.writeError(w, r, erpError(erp.EntityItems, err))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleProductTax(w http.ResponseWriter, r *http.Request) {
	product, err := s.ERP.FindProduct(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, erpError(erp.EntityItems, err))
		return
	}
	writeJSON(w, http.StatusOK, quotation.ProductTax(product))
}

func (s *Server) handleQuotation(w http.ResponseWriter, r *http.Request) {
	var req models.QuotationRequest
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.Quotation.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	var req models.CodeRequest
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.Login.RequestCode(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent to your email"})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.Login.VerifyCode(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.SubjectFromContext(r.Context())
	person, err := s.Login.Lookup(r.Context(), email)
	if err != nil {
		if apperrors.AsStandardError(err).Code == apperrors.ErrCodeResourceNotFound {
			err = apperrors.NewAuthenticationError("Could not validate credentials")
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": login.Greeting(person)})
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req models.ProposalCreate
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.Proposals.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", 100)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.Proposals.List(r.Context(), skip, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.Proposals.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProposal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.ProposalUpdate
	if err := s.decode(r, &req, apperrors.NewRequestInvalidError); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.Proposals.Update(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.Proposals.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewRequestInvalidError(name + " must be a non-negative integer")
	}
	return n, nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewRequestInvalidError("proposal id must be a positive integer")
	}
	return id, nil
}
