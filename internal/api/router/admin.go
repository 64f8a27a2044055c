package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// AdminHandler exposes the front-desk read views: today's appointment
// records, today's calendar bookings, and the reminder schedule for an
// appointment.
type AdminHandler struct {
	records   records.Store
	reminders reminders.Store
	logger    *logging.Logger
	nowFunc   func() time.Time
}

// NewAdminHandler creates the admin read-only handler.
func NewAdminHandler(recStore records.Store, remStore reminders.Store, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{
		records:   recStore,
		reminders: remStore,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Routes returns a chi router with the admin routes.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/records/today", h.TodayRecords)
	r.Get("/calendar/today", h.TodayCalendar)
	r.Get("/reminders/{appointmentID}", h.AppointmentReminders)
	return r
}

// TodayRecords lists today's confirmed appointment records.
// GET /admin/records/today
func (h *AdminHandler) TodayRecords(w http.ResponseWriter, r *http.Request) {
	h.listCollection(w, r, records.AppointmentsPrefix)
}

// TodayCalendar lists today's calendar bookings.
// GET /admin/calendar/today
func (h *AdminHandler) TodayCalendar(w http.ResponseWriter, r *http.Request) {
	h.listCollection(w, r, records.CalendarBookingsPrefix)
}

func (h *AdminHandler) listCollection(w http.ResponseWriter, r *http.Request, prefix string) {
	if h.records == nil {
		http.Error(w, `{"error": "records not configured"}`, http.StatusServiceUnavailable)
		return
	}
	collection := records.DailyCollection(prefix, h.nowFunc().UTC())
	recs, err := h.records.List(r.Context(), collection)
	if err != nil {
		h.logger.Error("failed to list records", "collection", collection, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []records.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"collection": collection,
		"records":    recs,
	}); err != nil {
		h.logger.Error("failed to encode records", "collection", collection, "error", err)
	}
}

// AppointmentReminders lists the reminder schedule for an appointment.
// GET /admin/reminders/{appointmentID}
func (h *AdminHandler) AppointmentReminders(w http.ResponseWriter, r *http.Request) {
	if h.reminders == nil {
		http.Error(w, `{"error": "reminders not configured"}`, http.StatusServiceUnavailable)
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")
	if appointmentID == "" {
		http.Error(w, `{"error": "appointment_id required"}`, http.StatusBadRequest)
		return
	}

	sched, err := h.reminders.ListForAppointment(r.Context(), appointmentID)
	if err != nil {
		h.logger.Error("failed to list reminders", "appointment_id", appointmentID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if sched == nil {
		sched = []reminders.Descriptor{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"appointment_id": appointmentID,
		"reminders":      sched,
	}); err != nil {
		h.logger.Error("failed to encode reminders", "appointment_id", appointmentID, "error", err)
	}
}
