package api

import (
	"encoding/json"
	"net/http"

	"github.com/invite-sh/server/internal/api/respond"
	"github.com/invite-sh/server/internal/links"
	"github.com/invite-sh/server/internal/model"
)

// LinksHandler encodes an already-extracted event into invite URLs. Link
// generation runs at presentation time so it never blocks or fails the
// extraction call.
type LinksHandler struct{}

func NewLinksHandler() *LinksHandler { return &LinksHandler{} }

type linksRequest struct {
	Event     model.Event `json:"event"`
	Providers []string    `json:"providers,omitempty"`
}

// CreateLinks handles POST /api/links.
func (h *LinksHandler) CreateLinks(w http.ResponseWriter, r *http.Request) {
	var req linksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Event.Title == "" || req.Event.Start == "" || req.Event.End == "" {
		respond.WriteBadRequest(w, "Event must have a title, start, and end.")
		return
	}

	providers := make([]links.Provider, 0, len(req.Providers))
	for _, name := range req.Providers {
		p, err := links.ParseProvider(name)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		providers = append(providers, p)
	}

	out, err := links.EncodeAll(req.Event, providers)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"links": out})
}
