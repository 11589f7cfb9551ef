package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/middleware"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/tasks"
)

// RestFeedbackHandler handles REST requests for car feedback.
type RestFeedbackHandler struct {
	feedbackService services.IFeedbackService
	taskClient      IAsynqClient
}

// NewRestFeedbackHandler creates a new RestFeedbackHandler.
func NewRestFeedbackHandler(feedbackService services.IFeedbackService, taskClient IAsynqClient) *RestFeedbackHandler {
	return &RestFeedbackHandler{feedbackService: feedbackService, taskClient: taskClient}
}

// SubmitFeedback handles POST /v1/cars/:id/feedback. Resubmission by the
// same seller for the same car updates the existing row.
func (h *RestFeedbackHandler) SubmitFeedback(c *gin.Context) {
	sellerID := middleware.SellerID(c)
	carID := c.Param("id")
	email := c.PostForm("email")
	comment := c.PostForm("comment")

	fb, err := h.feedbackService.Submit(c.Request.Context(), carID, sellerID, email, comment)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.taskClient != nil {
		task, err := tasks.NewFeedbackNotifyTask(carID, fb.Email, fb.Comment)
		if err == nil {
			if _, err := h.taskClient.Enqueue(task); err != nil {
				log.Printf("Failed to enqueue feedback notification for car %s: %v", carID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Feedback submitted successfully",
		"feedback": fb,
	})
}

// ListFeedback handles GET /v1/cars/:id/feedback.
func (h *RestFeedbackHandler) ListFeedback(c *gin.Context) {
	feedback, err := h.feedbackService.ListByCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
