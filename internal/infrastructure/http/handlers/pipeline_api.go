// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/application/pipeline"
	"github.com/savorlabs/nutrimatch/internal/domain/profile"
	"github.com/savorlabs/nutrimatch/internal/ports/inbound"
	apperrors "github.com/savorlabs/nutrimatch/pkg/errors"
)

// PipelineHandlers handles recipe pipeline API requests
type PipelineHandlers struct {
	recipes  inbound.RecipePipeline
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPipelineHandlers creates a new pipeline handlers instance
func NewPipelineHandlers(recipes inbound.RecipePipeline, logger *zap.Logger) *PipelineHandlers {
	return &PipelineHandlers{
		recipes:  recipes,
		validate: validator.New(),
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SearchRequest is the payload for POST /api/v1/recipes/search
type SearchRequest struct {
	Query               string   `json:"query" validate:"required"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	HealthConditions    []string `json:"health_conditions"`
	NResults            int      `json:"n_results" validate:"gte=0"`
	IncludeDynamic      *bool    `json:"include_dynamic"`
}

// RecommendRequest is the payload for POST /api/v1/recipes/recommendations
type RecommendRequest struct {
	DietaryRestrictions []string           `json:"dietary_restrictions"`
	Allergies           []string           `json:"allergies"`
	HealthConditions    []string           `json:"health_conditions"`
	CuisinePreferences  []string           `json:"cuisine_preferences"`
	NutritionalGoals    map[string]float64 `json:"nutritional_goals"`
	NResults            int                `json:"n_results" validate:"gte=0"`
	IncludeDynamic      *bool              `json:"include_dynamic"`
}

// SubstitutionRequest is the payload for POST /api/v1/ingredients/substitutions
type SubstitutionRequest struct {
	Ingredient          string   `json:"ingredient" validate:"required"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
}

// Search handles POST /api/v1/recipes/search
func (h *PipelineHandlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	response := h.recipes.Search(pipelineSearchRequest(req))
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    response,
		Message: "Search completed successfully",
	})
}

// Recommend handles POST /api/v1/recipes/recommendations
func (h *PipelineHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !h.decode(w, r, &req) {
		return
	}

	userProfile := profile.UserProfile{
		DietaryRestrictions: req.DietaryRestrictions,
		Allergies:           req.Allergies,
		HealthConditions:    req.HealthConditions,
		CuisinePreferences:  req.CuisinePreferences,
		NutritionalGoals:    req.NutritionalGoals,
	}

	response := h.recipes.Recommend(userProfile, req.NResults, includeDynamic(req.IncludeDynamic))
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    response,
		Message: "Recommendations generated successfully",
	})
}

// Substitutions handles POST /api/v1/ingredients/substitutions
func (h *PipelineHandlers) Substitutions(w http.ResponseWriter, r *http.Request) {
	var req SubstitutionRequest
	if !h.decode(w, r, &req) {
		return
	}

	response := h.recipes.Substitutions(req.Ingredient, req.DietaryRestrictions, req.Allergies)
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    response,
		Message: "Substitutions retrieved successfully",
	})
}

// Stats handles GET /api/v1/stats
func (h *PipelineHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    h.recipes.Stats(),
		Message: "Statistics retrieved successfully",
	})
}

// decode parses and validates a JSON request body. It writes the error
// response itself and reports whether the request may proceed.
func (h *PipelineHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, apperrors.NewBadRequestError("Invalid JSON request body"))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.logger.Debug("Request validation failed", zap.Error(err))
		h.writeError(w, apperrors.NewValidationError(err.Error()))
		return false
	}

	return true
}

func includeDynamic(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

// pipelineSearchRequest maps the transport DTO onto the application request.
func pipelineSearchRequest(req SearchRequest) pipeline.SearchRequest {
	return pipeline.SearchRequest{
		Query:               req.Query,
		DietaryRestrictions: req.DietaryRestrictions,
		Allergies:           req.Allergies,
		HealthConditions:    req.HealthConditions,
		NResults:            req.NResults,
		IncludeDynamic:      includeDynamic(req.IncludeDynamic),
	}
}

// writeError writes an AppError with its mapped HTTP status code
func (h *PipelineHandlers) writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	h.writeJSON(w, appErr.StatusCode(), APIResponse{
		Success: false,
		Error:   appErr.Message,
		Message: appErr.Details,
	})
}

// writeJSON writes a JSON response
func (h *PipelineHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
