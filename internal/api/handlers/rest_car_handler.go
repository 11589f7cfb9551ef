package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/middleware"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/tasks"
)

// IAsynqClient abstracts the asynq client for mocking in handler tests.
type IAsynqClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RestCarHandler handles REST requests for car listings.
type RestCarHandler struct {
	carService   services.ICarService
	imageService services.IImageService
	taskClient   IAsynqClient
	maxImageSize int64
}

// NewRestCarHandler creates a new RestCarHandler.
func NewRestCarHandler(carService services.ICarService, imageService services.IImageService, taskClient IAsynqClient, maxImageSize int64) *RestCarHandler {
	return &RestCarHandler{
		carService:   carService,
		imageService: imageService,
		taskClient:   taskClient,
		maxImageSize: maxImageSize,
	}
}

// carInputFromForm coerces the untyped form fields into a CarInput. Coercion
// failures are collected and reported together, never partially accepted.
func carInputFromForm(c *gin.Context) (services.CarInput, []string) {
	var msgs []string
	in := services.CarInput{
		CompanyName: c.PostForm("company"),
		Model:       c.PostForm("model"),
		Location:    c.PostForm("location"),
		BodyType:    c.PostForm("body_type"),
	}

	yearStr := strings.TrimSpace(c.PostForm("year"))
	if year, err := strconv.Atoi(yearStr); err == nil {
		in.Year = year
	} else {
		msgs = append(msgs, "Year must be a whole number.")
	}

	priceStr := strings.TrimSpace(c.PostForm("price"))
	if price, err := strconv.ParseFloat(priceStr, 64); err == nil {
		in.Price = price
	} else {
		msgs = append(msgs, "Price must be a number.")
	}

	return in, msgs
}

// CreateCar handles POST /v1/cars.
func (h *RestCarHandler) CreateCar(c *gin.Context) {
	sellerID := middleware.SellerID(c)

	in, msgs := carInputFromForm(c)
	if len(msgs) > 0 {
		respondError(c, apperr.Validation(msgs))
		return
	}

	car, err := h.carService.Create(c.Request.Context(), sellerID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"car": car})
}

// UpdateCar handles PUT /v1/cars/:id. All mutable fields are overwritten.
func (h *RestCarHandler) UpdateCar(c *gin.Context) {
	sellerID := middleware.SellerID(c)
	carID := c.Param("id")

	in, msgs := carInputFromForm(c)
	if len(msgs) > 0 {
		respondError(c, apperr.Validation(msgs))
		return
	}

	car, err := h.carService.Update(c.Request.Context(), carID, sellerID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"car": car})
}

// DeleteCar handles DELETE /v1/cars/:id.
func (h *RestCarHandler) DeleteCar(c *gin.Context) {
	sellerID := middleware.SellerID(c)
	carID := c.Param("id")

	if err := h.carService.Delete(c.Request.Context(), carID, sellerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Car deleted successfully!"})
}

// ListMyCars handles GET /v1/my/cars, newest first.
func (h *RestCarHandler) ListMyCars(c *gin.Context) {
	sellerID := middleware.SellerID(c)

	cars, err := h.carService.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

// GetCar handles GET /v1/cars/:id.
func (h *RestCarHandler) GetCar(c *gin.Context) {
	car, err := h.carService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"car": car})
}

// SearchCars handles GET /v1/cars/search with optional model, year and
// max_price query parameters. Absent parameters impose no constraint.
func (h *RestCarHandler) SearchCars(c *gin.Context) {
	var filter services.SearchFilter

	if model := strings.TrimSpace(c.Query("model")); model != "" {
		filter.Model = &model
	}
	if yearStr := strings.TrimSpace(c.Query("year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			respondError(c, apperr.Validation([]string{"Year must be a whole number."}))
			return
		}
		filter.Year = &year
	}
	if priceStr := strings.TrimSpace(c.Query("max_price")); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			respondError(c, apperr.Validation([]string{"Max price must be a number."}))
			return
		}
		filter.MaxPrice = &price
	}

	cars, err := h.carService.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

// UploadCarImage handles POST /v1/cars/:id/image. The multipart payload is
// sniffed and content-addressed by the image service; the declared filename
// is never trusted. If attaching the reference to the car fails after the
// bytes were written, the blob is removed before the error propagates.
func (h *RestCarHandler) UploadCarImage(c *gin.Context) {
	sellerID := middleware.SellerID(c)
	carID := c.Param("id")

	fileHeader, err := c.FormFile("car_image")
	if err != nil {
		respondError(c, apperr.Validation([]string{"No file uploaded."}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperr.Validation([]string{"Invalid upload."}))
		return
	}
	defer file.Close()

	// Read one byte past the cap so oversized payloads are detected without
	// buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		respondError(c, &apperr.StorageError{Op: "read", Err: err})
		return
	}

	imageRef, err := h.imageService.Ingest(c.Request.Context(), data, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.carService.AttachImage(c.Request.Context(), carID, sellerID, imageRef); err != nil {
		// Compensating cleanup: do not leave a blob no listing references.
		if rmErr := h.imageService.Remove(c.Request.Context(), imageRef); rmErr != nil {
			log.Printf("Failed to remove orphaned image %s: %v", imageRef, rmErr)
		}
		respondError(c, err)
		return
	}

	if h.taskClient != nil {
		task, err := tasks.NewImageThumbnailTask(imageRef)
		if err == nil {
			if _, err := h.taskClient.Enqueue(task); err != nil {
				log.Printf("Failed to enqueue thumbnail task for %s: %v", imageRef, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded successfully",
		"image_ref": imageRef,
	})
}
