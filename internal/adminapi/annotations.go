package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/annotation"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
)

type modePayload struct {
	Enabled bool `json:"enabled"`
}

type draftPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type boardView struct {
	Enabled     bool                 `json:"enabled"`
	Page        string               `json:"page"`
	Cap         int                  `json:"cap"`
	Count       int                  `json:"count"`
	Validated   int                  `json:"validated"`
	Submitted   bool                 `json:"submitted"`
	Draft       *annotation.Draft    `json:"draft,omitempty"`
	Comments    []annotation.Comment `json:"comments"`
	Markers     []annotation.Comment `json:"markers"`
	Selected    []string             `json:"selected"`
	Highlighted int64                `json:"highlighted,string,omitempty"`
}

func registerAnnotationRoutes() {
	webserver.ApiGET("/annotations", getAnnotations)
	webserver.ApiPUT("/annotations/mode", setAnnotationMode)
	webserver.ApiPOST("/annotations/click", clickAnnotation)
	webserver.ApiPOST("/annotations/draft", confirmDraft)
	webserver.ApiDELETE("/annotations/draft", cancelDraft)
	webserver.ApiPOST("/annotations/review", submitReview)
	webserver.ApiPOST("/annotations/:id/edit", editAnnotation)
	webserver.ApiPOST("/annotations/:id/validate", validateAnnotation)
	webserver.ApiPOST("/annotations/:id/select", selectAnnotation)
	webserver.ApiPOST("/annotations/:id/highlight", highlightAnnotation)
	webserver.ApiDELETE("/annotations/:id", deleteAnnotation)
}

func newBoardView(b *annotation.Board) boardView {
	v := boardView{
		Enabled:     b.Enabled(),
		Page:        b.Page(),
		Cap:         b.Cap(),
		Count:       b.Len(),
		Validated:   b.ValidatedCount(),
		Submitted:   b.Submitted(),
		Comments:    b.Comments(),
		Markers:     b.Markers(),
		Selected:    []string{},
		Highlighted: b.Highlighted(),
	}
	if d, open := b.Draft(); open {
		v.Draft = &d
	}
	if v.Comments == nil {
		v.Comments = []annotation.Comment{}
	}
	if v.Markers == nil {
		v.Markers = []annotation.Comment{}
	}
	for _, id := range b.Selected() {
		v.Selected = append(v.Selected, formatID(id))
	}
	return v
}

func getAnnotations(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, newBoardView(s.Board))
	})
}

func setAnnotationMode(c echo.Context) error {
	var payload modePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse mode", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		s.Board.SetEnabled(payload.Enabled)
		return ok(c, newBoardView(s.Board))
	})
}

// clickAnnotation opens a draft at the clicked point of the preview.
func clickAnnotation(c echo.Context) error {
	var payload annotation.Point
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse position", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Board.Click(payload); err != nil {
			return annotationError(c, err)
		}
		return ok(c, newBoardView(s.Board))
	})
}

// confirmDraft saves the open draft as a new comment or as an edit.
func confirmDraft(c echo.Context) error {
	var payload draftPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse comment", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		d, _ := s.Board.Draft()
		cm, err := s.Board.Confirm(payload.Title, payload.Description)
		if err != nil {
			return annotationError(c, err)
		}
		if d.Editing() {
			publish(c, events.TopicCommentUpdated, cm.Title)
		} else {
			publish(c, events.TopicCommentCreated, cm.Title)
		}
		return ok(c, cm)
	})
}

func cancelDraft(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		s.Board.CancelDraft()
		return ok(c, newBoardView(s.Board))
	})
}

func editAnnotation(c echo.Context) error {
	return withComment(c, func(s *session.Session, id int64) error {
		if err := s.Board.Edit(id); err != nil {
			return annotationError(c, err)
		}
		return ok(c, newBoardView(s.Board))
	})
}

func validateAnnotation(c echo.Context) error {
	return withComment(c, func(s *session.Session, id int64) error {
		cm, err := s.Board.Validate(id)
		if err != nil {
			return annotationError(c, err)
		}
		publish(c, events.TopicCommentValidated, cm.Title)
		return ok(c, cm)
	})
}

func selectAnnotation(c echo.Context) error {
	return withComment(c, func(s *session.Session, id int64) error {
		selected, err := s.Board.ToggleSelect(id)
		if err != nil {
			return annotationError(c, err)
		}
		return ok(c, map[string]interface{}{"id": formatID(id), "selected": selected})
	})
}

func highlightAnnotation(c echo.Context) error {
	return withComment(c, func(s *session.Session, id int64) error {
		if err := s.Board.Highlight(id); err != nil {
			return annotationError(c, err)
		}
		return ok(c, newBoardView(s.Board))
	})
}

func deleteAnnotation(c echo.Context) error {
	return withComment(c, func(s *session.Session, id int64) error {
		if err := s.Board.Delete(id); err != nil {
			return annotationError(c, err)
		}
		publish(c, events.TopicCommentDeleted, formatID(id))
		return ok(c, map[string]interface{}{"id": formatID(id)})
	})
}

func submitReview(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		if err := s.Board.SubmitForReview(); err != nil {
			return annotationError(c, err)
		}
		publish(c, events.TopicReviewSubmitted, "")
		return ok(c, newBoardView(s.Board))
	})
}

func withComment(c echo.Context, fn func(s *session.Session, id int64) error) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid comment ID", nil)
	}
	return withSession(c, func(s *session.Session) error {
		return fn(s, id)
	})
}

func annotationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, annotation.ErrModeOff):
		return fail(c, http.StatusConflict, "MODE_OFF", "Annotation mode is off", nil)
	case errors.Is(err, annotation.ErrCapReached):
		return fail(c, http.StatusConflict, "LIMIT_REACHED", "Comment limit reached", nil)
	case errors.Is(err, annotation.ErrNoDraft):
		return fail(c, http.StatusConflict, "NO_DRAFT", "No comment is being written", nil)
	case errors.Is(err, annotation.ErrEmptyField):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Title and description are required", nil)
	case errors.Is(err, annotation.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Comment not found", nil)
	case errors.Is(err, annotation.ErrNothingToReview):
		return fail(c, http.StatusConflict, "NOTHING_TO_REVIEW", "Add a comment before submitting", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
