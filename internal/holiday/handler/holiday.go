package handler

import (
	"net/http"
	"strconv"
	"time"

	"hyrra/internal/holiday"
	apperrors "hyrra/pkg/errors"
	httputil "hyrra/pkg/http"
	"hyrra/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HolidayHandler struct {
	calendar *holiday.Calendar
	log      *logger.Logger
}

func NewHolidayHandler(calendar *holiday.Calendar, log *logger.Logger) *HolidayHandler {
	return &HolidayHandler{
		calendar: calendar,
		log:      log,
	}
}

// ListForYear serves the holiday table the calendar view renders. Defaults to
// the current year.
func (h *HolidayHandler) ListForYear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 1900 || parsed > 2200 {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid year parameter: "+yearStr)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "ListForYear", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		year = parsed
	}

	periods := h.calendar.PeriodsForYear(year)
	if err := httputil.WriteSuccess(w, periods); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForYear", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HolidayHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/holidays", h.ListForYear)
}
