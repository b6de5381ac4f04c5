package adminapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/annotation"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
)

type milestonesView struct {
	Validated  int                        `json:"validated"`
	Milestones []annotation.MilestoneView `json:"milestones"`
	Completed  []int                      `json:"completed"`
}

func registerMilestoneRoutes() {
	webserver.ApiGET("/milestones", listMilestones)
	webserver.ApiPOST("/milestones/:id/select", selectMilestone)
	webserver.ApiPOST("/milestones/pay", payMilestone)
}

func newMilestonesView(s *session.Session) milestonesView {
	validated := s.Board.ValidatedCount()
	return milestonesView{
		Validated:  validated,
		Milestones: s.Milestones.Views(validated),
		Completed:  s.Milestones.Completed(),
	}
}

func listMilestones(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, newMilestonesView(s))
	})
}

func selectMilestone(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid milestone ID", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Milestones.Select(id); err != nil {
			return milestoneError(c, err)
		}
		return ok(c, newMilestonesView(s))
	})
}

// payMilestone completes the selected milestone when enough comments are
// validated.
func payMilestone(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		m, err := s.Milestones.Complete(s.Board.ValidatedCount())
		if err != nil {
			return milestoneError(c, err)
		}
		publish(c, events.TopicMilestoneCompleted, m.Name)
		return ok(c, newMilestonesView(s))
	})
}

func milestoneError(c echo.Context, err error) error {
	var te *annotation.ThresholdError
	switch {
	case errors.As(err, &te):
		return fail(c, http.StatusConflict, "THRESHOLD_NOT_MET", te.Error(), map[string]int{
			"required":  te.Required,
			"validated": te.Validated,
		})
	case errors.Is(err, annotation.ErrMilestoneNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Milestone not found", nil)
	case errors.Is(err, annotation.ErrMilestoneCompleted):
		return fail(c, http.StatusConflict, "ALREADY_COMPLETED", "Milestone is already completed", nil)
	case errors.Is(err, annotation.ErrNoMilestoneSelected):
		return fail(c, http.StatusConflict, "NO_SELECTION", "Select a milestone first", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
