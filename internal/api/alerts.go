package api

import (
	"net/http"

	"investment-tracker/internal/app"
	"investment-tracker/internal/settings"
	"investment-tracker/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.listAlerts(w, r, q.Get("status"), q.Get("symbol"))
}

func (h *Handler) HandleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	h.listAlerts(w, r, string(models.AlertStatusActive), "")
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request, status, symbol string) {
	list, err := h.app.ListAlerts(r.Context(), status, symbol)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Alert{}
	}
	h.jsonResponse(w, list)
}

func (h *Handler) HandleGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.app.GetAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, alert)
}

func (h *Handler) HandleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req app.AlertInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	alert, err := h.app.CreateAlert(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonStatus(w, http.StatusCreated, alert)
}

func (h *Handler) HandleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	var update models.AlertUpdate
	if !h.decodeJSON(w, r, &update) {
		return
	}
	alert, err := h.app.UpdateAlert(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, alert)
}

func (h *Handler) HandleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, StatusResponse{Status: "deleted"})
}

func (h *Handler) HandleEnableAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.app.EnableAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, alert)
}

func (h *Handler) HandleDisableAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.app.DisableAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, alert)
}

// HandleCheckAlerts runs one evaluation pass on demand
func (h *Handler) HandleCheckAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.CheckAlerts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, result)
}

func (h *Handler) HandleAlertStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.AlertStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, stats)
}

func (h *Handler) HandleAlertSummary(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.AlertSummaries(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.AlertSummary{}
	}
	h.jsonResponse(w, list)
}

// HandleGetSettings returns the notification settings with secrets masked
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	masked, err := h.app.NotificationSettings()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, masked)
}

func (h *Handler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Input
	if !h.decodeJSON(w, r, &req) {
		return
	}
	masked, err := h.app.SaveNotificationSettings(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, masked)
}

func (h *Handler) HandleTestEmail(w http.ResponseWriter, r *http.Request) {
	h.testNotification(w, r, models.ChannelEmail, r.URL.Query().Get("email"))
}

func (h *Handler) HandleTestTelegram(w http.ResponseWriter, r *http.Request) {
	h.testNotification(w, r, models.ChannelTelegram, r.URL.Query().Get("chat_id"))
}

func (h *Handler) testNotification(w http.ResponseWriter, r *http.Request, channel models.NotificationChannel, recipient string) {
	if err := h.app.TestNotification(r.Context(), channel, recipient); err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, StatusResponse{Status: "sent", Message: string(channel) + " test notification sent"})
}
