package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
	"github.com/CampusLoop/CoursePilot/internal/util"
)

// coursesHandler lists courses or registers one directly (GET or POST /courses).
func (s *Server) coursesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		courses, err := s.st.GetCourses()
		if err != nil {
			slog.Error("Server.coursesHandler: failed to fetch courses", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch courses"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(courses))
	case http.MethodPost:
		var c models.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if c.ID == "" {
			c.ID = util.GenerateCourseID()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		if err := c.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if err := s.st.AddCourse(c); err != nil {
			slog.Error("Server.coursesHandler: failed to add course", "error", err, "name", c.Name)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to add course"))
			return
		}
		slog.Info("Server.coursesHandler: course registered", "name", c.Name)
		writeJSONResponse(w, http.StatusCreated, models.Success(c))
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// invitationsHandler lists invitations (GET /invitations?course=...).
func (s *Server) invitationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	invitations, err := s.st.GetInvitations(r.URL.Query().Get("course"))
	if err != nil {
		slog.Error("Server.invitationsHandler: failed to fetch invitations", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch invitations"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(invitations))
}

// announcementsHandler lists or posts announcements (GET or POST /announcements).
func (s *Server) announcementsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		announcements, err := s.st.GetAnnouncements(r.URL.Query().Get("course"))
		if err != nil {
			slog.Error("Server.announcementsHandler: failed to fetch announcements", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch announcements"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(announcements))
	case http.MethodPost:
		var a models.Announcement
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if a.ID == "" {
			a.ID = util.GenerateAnnouncementID()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if err := a.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if err := s.st.AddAnnouncement(a); err != nil {
			slog.Error("Server.announcementsHandler: failed to add announcement", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to add announcement"))
			return
		}
		slog.Info("Server.announcementsHandler: announcement posted", "course", a.CourseName, "title", a.Title)
		writeJSONResponse(w, http.StatusCreated, models.Success(a))
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// assignmentsHandler lists or creates assignments (GET or POST /assignments).
func (s *Server) assignmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		assignments, err := s.st.GetAssignments(r.URL.Query().Get("course"))
		if err != nil {
			slog.Error("Server.assignmentsHandler: failed to fetch assignments", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch assignments"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(assignments))
	case http.MethodPost:
		var a models.Assignment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if a.ID == "" {
			a.ID = util.GenerateAssignmentID()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if err := a.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if err := s.st.AddAssignment(a); err != nil {
			slog.Error("Server.assignmentsHandler: failed to add assignment", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to add assignment"))
			return
		}
		slog.Info("Server.assignmentsHandler: assignment created", "course", a.CourseName, "title", a.Title)
		writeJSONResponse(w, http.StatusCreated, models.Success(a))
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
