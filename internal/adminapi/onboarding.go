package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
	"github.com/talkincode/storebuilder/internal/wizard"
)

type answerPayload struct {
	Value string `json:"value"`
}

type onboardingResponse struct {
	wizard.State
	Profile *wizard.Profile `json:"profile,omitempty"`
}

func registerOnboardingRoutes() {
	webserver.ApiGET("/onboarding", getOnboarding)
	webserver.ApiPOST("/onboarding/answer", answerOnboarding)
}

func onboardingView(run *wizard.Run) (onboardingResponse, error) {
	resp := onboardingResponse{State: run.Snapshot()}
	if run.Done() {
		p, err := wizard.DecodeProfile(run.Answers())
		if err != nil {
			return resp, err
		}
		resp.Profile = &p
	}
	return resp, nil
}

func getOnboarding(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		resp, err := onboardingView(s.Onboarding)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to build profile", err.Error())
		}
		return ok(c, resp)
	})
}

// answerOnboarding answers the current step: option steps take one of the
// offered values, free-text steps take any text.
func answerOnboarding(c echo.Context) error {
	var payload answerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse answer", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		run := s.Onboarding
		step, open := run.Current()
		if !open {
			return fail(c, http.StatusConflict, "COMPLETED", "Onboarding is already completed", nil)
		}
		var err error
		if step.FreeText() {
			err = run.Answer(payload.Value)
		} else {
			err = run.Select(payload.Value)
		}
		switch {
		case errors.Is(err, wizard.ErrUnknownOption):
			return fail(c, http.StatusBadRequest, "INVALID_OPTION", "Value is not one of the step options", step.Options)
		case err != nil:
			return fail(c, http.StatusBadRequest, "INVALID_ANSWER", err.Error(), nil)
		}
		publish(c, events.TopicOnboardingAnswered, string(step.Field))
		if run.Done() {
			publish(c, events.TopicOnboardingDone, "")
		}
		resp, err := onboardingView(run)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to build profile", err.Error())
		}
		return ok(c, resp)
	})
}
