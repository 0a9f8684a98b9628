package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/transport"
)

type ServiceAPI interface {
	List(p *internal.Principal, filters ListFilters) (*ListResponse, error)
	UnreadCount(p *internal.Principal) (int64, error)
	MarkRead(p *internal.Principal, notificationID int64) error
	MarkAllRead(p *internal.Principal) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filters ListFilters
	if readStr := r.URL.Query().Get("is_read"); readStr != "" {
		if isRead, err := strconv.ParseBool(readStr); err == nil {
			filters.IsRead = &isRead
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filters.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			filters.Offset = o
		}
	}

	resp, err := h.Service.List(p, filters)
	if err != nil {
		h.Logger.Error("List: service error", "error", err, "user_id", p.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.Service.UnreadCount(p)
	if err != nil {
		h.Logger.Error("UnreadCount: service error", "error", err, "user_id", p.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.Service.MarkRead(p, id); err != nil {
		h.Logger.Error("MarkRead: service error", "error", err, "notification_id", id, "user_id", p.UserID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.MarkAllRead(p)
	if err != nil {
		h.Logger.Error("MarkAllRead: service error", "error", err, "user_id", p.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MarkAllReadResponse{Updated: updated})
}
