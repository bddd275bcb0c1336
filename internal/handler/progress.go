package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/progress"
)

// CompleteMissionRequest is the body of POST /missions/complete
type CompleteMissionRequest struct {
	MissionID string `json:"mission_id" validate:"required,max=64,ref"`
}

// ComplianceRequest is the body of POST /compliance
type ComplianceRequest struct {
	ContextID   string  `json:"context_id" validate:"required,max=64,ref"`
	Co2ImpactKg float64 `json:"co2_impact_kg" validate:"gte=0,lte=10000"`
	IsOnTime    bool    `json:"is_on_time"`
}

// PollutionReportRequest is the body of POST /pollution-reports
type PollutionReportRequest struct {
	ReportID    string  `json:"report_id" validate:"required,max=64,ref"`
	Co2ImpactKg float64 `json:"co2_impact_kg" validate:"gte=0,lte=10000"`
}

// ProgressHandler exposes the rewards engine over HTTP
type ProgressHandler struct {
	engine progress.Engine
}

func NewProgressHandler(engine progress.Engine) *ProgressHandler {
	return &ProgressHandler{engine: engine}
}

// HandleCompleteMission credits a completed mission to the caller
func (h *ProgressHandler) HandleCompleteMission(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req CompleteMissionRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Complete mission"); err != nil {
		return
	}

	result, err := h.engine.CompleteMission(r.Context(), userID, req.MissionID)
	if err != nil {
		respondServiceError(w, r, "Complete mission", err)
		return
	}

	logger.FromContext(r.Context()).Info("Mission completed",
		"user_id", userID,
		"mission_id", req.MissionID,
		"points", result.PointsAwarded,
	)
	respondJSON(w, http.StatusOK, result)
}

// HandleLogCompliance credits a vehicle compliance event to the caller
func (h *ProgressHandler) HandleLogCompliance(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req ComplianceRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Log compliance"); err != nil {
		return
	}

	result, err := h.engine.LogComplianceEvent(r.Context(), userID, req.ContextID, req.Co2ImpactKg, req.IsOnTime)
	if err != nil {
		respondServiceError(w, r, "Log compliance", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleReportPollution credits a pollution report to the caller
func (h *ProgressHandler) HandleReportPollution(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req PollutionReportRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Report pollution"); err != nil {
		return
	}

	result, err := h.engine.ReportPollution(r.Context(), userID, req.ReportID, req.Co2ImpactKg)
	if err != nil {
		respondServiceError(w, r, "Report pollution", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleGetProgress returns the caller's totals, streak and badges
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.engine.GetProgress(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "Get progress", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// HandleGetMilestones returns the caller's active recurring milestones
func (h *ProgressHandler) HandleGetMilestones(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	views, err := h.engine.GetActiveMilestones(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "Get milestones", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: views})
}

// HandleGetDailyMissions returns the caller's mission pool for today
func (h *ProgressHandler) HandleGetDailyMissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	missions, err := h.engine.DailyMissions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "Daily missions", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: missions})
}

// HandleGetCommunityChallenge returns the community's active challenge
func (h *ProgressHandler) HandleGetCommunityChallenge(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if communityID == "" {
		respondError(w, http.StatusBadRequest, ErrMsgMissingCommunityID)
		return
	}
	if err := GetValidator().ValidateVar(communityID, "ref,max=64"); err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidInputErr)
		return
	}

	view, err := h.engine.GetCommunityChallenge(r.Context(), communityID)
	if err != nil {
		respondServiceError(w, r, "Get community challenge", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// HandleSweep expires overdue milestones and challenges
func (h *ProgressHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.SweepExpirations(r.Context())
	if err != nil {
		respondServiceError(w, r, "Sweep expirations", err)
		return
	}

	logger.FromContext(r.Context()).Info("Manual sweep completed",
		"milestones_expired", result.MilestonesExpired,
		"challenges_expired", result.ChallengesExpired,
	)
	respondJSON(w, http.StatusOK, result)
}
