// Package server exposes the reminder store over HTTP for integrations that
// bypass the chat bot. Payloads are structured; free-text interpretation
// stays in the bot.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/logivations/zulip-reminder/internal/cronspec"
	"github.com/logivations/zulip-reminder/internal/database"
	"github.com/logivations/zulip-reminder/internal/models"
	"github.com/logivations/zulip-reminder/internal/repository"
	"github.com/logivations/zulip-reminder/internal/rrule"
)

// Notifier wakes the scheduler after a write.
type Notifier interface {
	Notify()
}

type Server struct {
	reminders *repository.ReminderRepository
	timezones *repository.TimezoneRepository
	sched     Notifier
	router    *mux.Router
}

func New(db *database.DB, sched Notifier) *Server {
	s := &Server{
		reminders: repository.NewReminderRepository(db),
		timezones: repository.NewTimezoneRepository(db),
		sched:     sched,
		router:    mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/add_reminder", s.handleAdd).Methods(http.MethodPost)
	s.router.HandleFunc("/repeat_reminder", s.handleRepeat).Methods(http.MethodPost)
	s.router.HandleFunc("/remove_reminder", s.handleRemove).Methods(http.MethodPost)
	s.router.HandleFunc("/list_reminders", s.handleList).Methods(http.MethodPost)
	s.router.HandleFunc("/timezone", s.handleTimezone).Methods(http.MethodPost)

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var reminder models.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if reminder.UserEmail == "" || reminder.Content == "" || reminder.RemindAt == nil {
		respondError(w, http.StatusBadRequest, "user_email, content and remind_at are required")
		return
	}

	// One-shot endpoint; recurrence fields belong on /repeat_reminder.
	reminder.CronSpec = ""
	reminder.RecurrenceRule = ""
	reminder.Dtstart = nil
	reminder.Active = true

	if err := s.reminders.Create(r.Context(), &reminder); err != nil {
		log.Printf("Failed to create reminder: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}
	s.sched.Notify()
	respondJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var reminder models.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if reminder.UserEmail == "" || reminder.Content == "" || reminder.RemindAt == nil {
		respondError(w, http.StatusBadRequest, "user_email, content and remind_at are required")
		return
	}
	if reminder.CronSpec == "" && reminder.RecurrenceRule == "" {
		respondError(w, http.StatusBadRequest, "cron_spec or recurrence_rule is required")
		return
	}
	if reminder.CronSpec != "" && cronspec.Validate(reminder.CronSpec) != nil {
		respondError(w, http.StatusBadRequest, "cron_spec does not parse")
		return
	}
	if reminder.RecurrenceRule != "" && !rrule.IsRecurring(reminder.RecurrenceRule) {
		respondError(w, http.StatusBadRequest, "recurrence_rule is not a recurrence rule")
		return
	}
	reminder.Active = true

	if err := s.reminders.Create(r.Context(), &reminder); err != nil {
		log.Printf("Failed to create recurring reminder: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}
	s.sched.Notify()
	respondJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReminderID int    `json:"reminders_id"`
		UserEmail  string `json:"user_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserEmail == "" || req.ReminderID == 0 {
		respondError(w, http.StatusBadRequest, "user_email and reminders_id are required")
		return
	}

	deleted, err := s.reminders.Delete(r.Context(), req.ReminderID, req.UserEmail)
	if err != nil {
		log.Printf("Failed to delete reminder %d: %v", req.ReminderID, err)
		respondError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "no such reminder for this user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserEmail == "" {
		respondError(w, http.StatusBadRequest, "user_email is required")
		return
	}

	reminders, err := s.reminders.GetByUser(r.Context(), req.UserEmail)
	if err != nil {
		log.Printf("Failed to list reminders for %s: %v", req.UserEmail, err)
		respondError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

func (s *Server) handleTimezone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email"`
		Zone      string `json:"zone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserEmail == "" || req.Zone == "" {
		respondError(w, http.StatusBadRequest, "user_email and zone are required")
		return
	}
	if _, err := time.LoadLocation(req.Zone); err != nil {
		respondError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	if err := s.timezones.Set(r.Context(), req.UserEmail, req.Zone); err != nil {
		log.Printf("Failed to store timezone for %s: %v", req.UserEmail, err)
		respondError(w, http.StatusInternalServerError, "failed to store timezone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "zone": req.Zone})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
