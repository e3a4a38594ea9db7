// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"strings"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	"github.com/go-chi/chi/v5"
)

// ReasonView is a reason rendered for one locale. Both labels stay available.
type ReasonView struct {
	Code          model.DormancyCode     `json:"code"`
	Category      model.DormancyCategory `json:"category"`
	Label         string                 `json:"label"`
	CategoryLabel string                 `json:"category_label"`
	Labels        taxonomy.Labels        `json:"labels"`
}

// CategoryView lists the reasons of one category.
type CategoryView struct {
	Category model.DormancyCategory `json:"category"`
	Label    string                 `json:"label"`
	Locale   model.Locale           `json:"locale"`
	Reasons  []ReasonView           `json:"reasons"`
}

func reasonView(r taxonomy.Reason, locale model.Locale) ReasonView {
	return ReasonView{
		Code:          r.Code,
		Category:      r.Category,
		Label:         r.Label(locale),
		CategoryLabel: taxonomy.CategoryLabel(r.Category, locale),
		Labels:        r.Labels,
	}
}

func (s *Server) locale(r *http.Request) model.Locale {
	requested := r.URL.Query().Get("locale")
	if requested == "" {
		requested = r.Header.Get("Accept-Language")
		// Only the first preference is considered.
		requested, _, _ = strings.Cut(requested, ",")
		requested, _, _ = strings.Cut(requested, ";")
	}
	return s.svc.Locale(strings.TrimSpace(requested))
}

func (s *Server) handleListReasons(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	filter := model.DormancyCategory(r.URL.Query().Get("category"))
	out := make([]ReasonView, 0, len(taxonomy.Codes()))
	for _, reason := range taxonomy.Reasons() {
		if filter != "" && reason.Category != filter {
			continue
		}
		out = append(out, reasonView(reason, locale))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetReason(w http.ResponseWriter, r *http.Request) {
	reason, err := s.svc.ReasonByCode(r.Context(), model.DormancyCode(chi.URLParam(r, "code")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reasonView(reason, s.locale(r)))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	out := make([]CategoryView, 0, len(taxonomy.Categories()))
	for _, c := range taxonomy.Categories() {
		out = append(out, categoryView(c, locale))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category := model.DormancyCategory(chi.URLParam(r, "category"))
	if !category.Valid() {
		writeProblem(w, r, http.StatusNotFound, "unknown_category", "unknown dormancy category "+string(category))
		return
	}
	writeJSON(w, http.StatusOK, categoryView(category, s.locale(r)))
}

func categoryView(c model.DormancyCategory, locale model.Locale) CategoryView {
	view := CategoryView{Category: c, Label: taxonomy.CategoryLabel(c, locale), Locale: locale, Reasons: []ReasonView{}}
	for _, code := range taxonomy.CodesIn(c) {
		reason, err := taxonomy.ReasonByCode(code)
		if err != nil {
			continue
		}
		view.Reasons = append(view.Reasons, reasonView(reason, locale))
	}
	return view
}
