// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/service"
	"github.com/go-chi/chi/v5"
)

// SelectResponse lists the triggered playbooks for an agent.
type SelectResponse struct {
	AgentID   string              `json:"agent_id"`
	Playbooks []playbook.Playbook `json:"playbooks"`
}

// EffectivenessRequest carries one coordinator's outreach metrics.
type EffectivenessRequest struct {
	CoordinatorID string      `json:"coordinator_id"`
	Metrics       adm.Metrics `json:"metrics"`
}

// EffectivenessResponse is the classified tier.
type EffectivenessResponse struct {
	CoordinatorID string   `json:"coordinator_id"`
	Tier          adm.Tier `json:"tier"`
}

// RankRequest holds the candidates competing for attention.
type RankRequest struct {
	Candidates []adm.Candidate `json:"candidates"`
}

// PortfolioRequest asks for several coordinator briefings at once.
type PortfolioRequest struct {
	Briefings []service.BriefingRequest `json:"briefings"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req service.TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tr, err := s.svc.Transition(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleReassess(w http.ResponseWriter, r *http.Request) {
	var snap agent.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Reassess(r.Context(), snap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPlaybooks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog().Playbooks())
}

func (s *Server) handleGetPlaybook(w http.ResponseWriter, r *http.Request) {
	pb, err := s.svc.Catalog().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pb)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var snap agent.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, r, err)
		return
	}
	selected, err := s.svc.SelectPlaybooks(r.Context(), snap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if selected == nil {
		selected = []playbook.Playbook{}
	}
	writeJSON(w, http.StatusOK, SelectResponse{AgentID: snap.AgentID, Playbooks: selected})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var snap agent.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := s.svc.Plan(r.Context(), snap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleEffectiveness(w http.ResponseWriter, r *http.Request) {
	var req EffectivenessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tier, err := s.svc.Classify(r.Context(), req.CoordinatorID, req.Metrics)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EffectivenessResponse{CoordinatorID: req.CoordinatorID, Tier: tier})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Rank(r.Context(), req.Candidates))
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	var req service.BriefingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.Briefing(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req PortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.PortfolioBriefings(r.Context(), req.Briefings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
