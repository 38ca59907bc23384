package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/forms"
)

type stepRequest struct {
	Step       int              `json:"step"`
	Submission forms.Submission `json:"submission"`
}

type stepResponse struct {
	Valid      bool              `json:"valid"`
	Step       int               `json:"step"`
	NextStep   int               `json:"next_step"`
	PrevStep   int               `json:"prev_step"`
	Errors     forms.FieldErrors `json:"errors,omitempty"`
	Categories []string          `json:"categories"`
}

// ValidateSubmission checks one wizard step and reports where Next and Back lead.
func (h *Handler) ValidateSubmission(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid submission")
		return
	}

	resp := stepResponse{
		Step:       req.Step,
		PrevStep:   forms.PrevStep(req.Step),
		Categories: forms.SubmissionCategories,
	}
	next, err := req.Submission.Advance(req.Step)
	resp.NextStep = next
	if err != nil {
		fe, ok := err.(forms.FieldErrors)
		if !ok {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		resp.Errors = fe
	} else {
		resp.Valid = true
	}
	c.JSON(http.StatusOK, resp)
}

// Submit accepts a complete recipe submission and forwards it to the sink.
func (h *Handler) Submit(c *gin.Context) {
	var s forms.Submission
	if err := c.ShouldBindJSON(&s); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid submission")
		return
	}

	accepted, err := forms.Accept(c.Request.Context(), h.sink, s)
	if err != nil {
		if invalidForm(c, err) {
			return
		}
		slog.Error("API: Submission sink failed", "error", err)
		errorJSON(c, http.StatusBadGateway, "Could not submit recipe")
		return
	}
	c.JSON(http.StatusCreated, accepted)
}
