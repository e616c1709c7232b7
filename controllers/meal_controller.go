package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noamk2004/image-to-text/models"
	"github.com/noamk2004/image-to-text/services"
	"github.com/noamk2004/image-to-text/storage"
)

// MealController exposes the submission workflow and the meal history over
// HTTP. The store and workflow are injected so handlers share one owned
// instance instead of rebuilding state per request.
type MealController struct {
	submissions *services.SubmissionService
	store       *storage.MealStore
	maxUpload   int64
}

func NewMealController(submissions *services.SubmissionService, store *storage.MealStore, maxUpload int64) *MealController {
	return &MealController{
		submissions: submissions,
		store:       store,
		maxUpload:   maxUpload,
	}
}

// SelectImage accepts a multipart upload ("image" field) and stages it as
// the pending submission input.
func (mc *MealController) SelectImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if mc.maxUpload > 0 && fh.Size > mc.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	if err := mc.submissions.Select(data, mimeType); err != nil {
		mc.submissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, mc.submissions.Status())
}

// Submit runs one analysis attempt with the staged image.
func (mc *MealController) Submit(c *gin.Context) {
	rec, err := mc.submissions.Submit(c.Request.Context())
	if err != nil {
		mc.submissionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Retry re-runs a failed attempt with the retained image.
func (mc *MealController) Retry(c *gin.Context) {
	rec, err := mc.submissions.Retry(c.Request.Context())
	if err != nil {
		mc.submissionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SubmissionStatus reports the workflow state snapshot.
func (mc *MealController) SubmissionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, mc.submissions.Status())
}

// ClearSelection discards the staged image.
func (mc *MealController) ClearSelection(c *gin.Context) {
	if err := mc.submissions.Clear(); err != nil {
		mc.submissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, mc.submissions.Status())
}

// ListMeals returns the collection, newest first.
func (mc *MealController) ListMeals(c *gin.Context) {
	records := mc.store.List()
	if records == nil {
		records = []models.MealRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// DeleteMeal removes one record by id. Deleting an unknown id succeeds.
func (mc *MealController) DeleteMeal(c *gin.Context) {
	if err := mc.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Totals recomputes the aggregate macros from the current collection.
func (mc *MealController) Totals(c *gin.Context) {
	c.JSON(http.StatusOK, models.SumMacros(mc.store.List()))
}

func (mc *MealController) submissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoImageSelected), errors.Is(err, services.ErrNothingToRetry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// A failed attempt: the message is user-visible and the staged
		// image is retained, so the client can offer a retry.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
	}
}
