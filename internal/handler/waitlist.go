package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/service"
	"github.com/StoryBuilderAi/storybuilder/internal/waitlist"
)

// WaitlistHandler exposes the onboarding form catalog and accepts
// completed forms.
type WaitlistHandler struct {
	Waitlist *service.WaitlistService
}

func NewWaitlistHandler(w *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{Waitlist: w}
}

func (h *WaitlistHandler) Steps(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"totalSteps": waitlist.TotalSteps,
		"steps":      h.Waitlist.Steps(),
	})
}

// Submit accepts a completed form. Delivery to the rest of the system is
// asynchronous, hence 202.
func (h *WaitlistHandler) Submit(c echo.Context) error {
	var sub waitlist.Submission
	if err := c.Bind(&sub); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Waitlist.Submit(ctx, sub)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"message":    "Thanks for joining the waitlist!",
		"submission": st,
	})
}
