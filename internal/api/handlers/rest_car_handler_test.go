package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/handlers"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/api/middleware"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/models"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
)

// fakeAuth injects a seller identity the way AuthMiddleware would.
func fakeAuth(sellerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeySellerID, sellerID)
		c.Next()
	}
}

func validCarForm() url.Values {
	return url.Values{
		"company":   {"Toyota"},
		"model":     {"Corolla"},
		"year":      {"2018"},
		"price":     {"15000"},
		"location":  {"Melbourne"},
		"body_type": {"Sedan"},
	}
}

func TestRestCarHandler_CreateCar_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.POST("/v1/cars", fakeAuth("seller-abc"), handler.CreateCar)

	expectedInput := services.CarInput{
		CompanyName: "Toyota",
		Model:       "Corolla",
		Year:        2018,
		Price:       15000,
		Location:    "Melbourne",
		BodyType:    "Sedan",
	}
	expectedCar := &models.Car{ID: "car-1", SellerID: "seller-abc", Model: "Corolla"}
	mockCarSvc.On("Create", mock.Anything, "seller-abc", expectedInput).Return(expectedCar, nil)

	w := postForm(r, "/v1/cars", validCarForm())

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody map[string]models.Car
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "car-1", respBody["car"].ID)
	mockCarSvc.AssertExpectations(t)
}

func TestRestCarHandler_CreateCar_MalformedNumbers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.POST("/v1/cars", fakeAuth("seller-abc"), handler.CreateCar)

	form := validCarForm()
	form.Set("year", "twenty-eighteen")
	form.Set("price", "cheap")
	w := postForm(r, "/v1/cars", form)

	// Coercion failures never reach the service.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var respBody map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Contains(t, respBody["errors"], "Year must be a whole number.")
	assert.Contains(t, respBody["errors"], "Price must be a number.")
	mockCarSvc.AssertNotCalled(t, "Create")
}

func TestRestCarHandler_UpdateCar_NotOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.PUT("/v1/cars/:id", fakeAuth("intruder"), handler.UpdateCar)

	mockCarSvc.On("Update", mock.Anything, "car-1", "intruder", mock.Anything).Return(nil, apperr.ErrNotOwner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/cars/car-1", bytes.NewBufferString(validCarForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockCarSvc.AssertExpectations(t)
}

func TestRestCarHandler_DeleteCar_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.DELETE("/v1/cars/:id", fakeAuth("seller-abc"), handler.DeleteCar)

	mockCarSvc.On("Delete", mock.Anything, "no-such-car", "seller-abc").Return(apperr.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/v1/cars/no-such-car", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockCarSvc.AssertExpectations(t)
}

func TestRestCarHandler_GetCar_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.GET("/v1/cars/:id", handler.GetCar)

	car := &models.Car{ID: "car-1", Model: "Corolla", ImageRef: models.DefaultImageRef}
	mockCarSvc.On("FindByID", mock.Anything, "car-1").Return(car, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/cars/car-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]models.Car
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, models.DefaultImageRef, respBody["car"].ImageRef)
	mockCarSvc.AssertExpectations(t)
}

func TestRestCarHandler_SearchCars_QueryParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.GET("/v1/cars/search", handler.SearchCars)

	model := "corolla"
	year := 2018
	maxPrice := 20000.0
	expectedFilter := services.SearchFilter{Model: &model, Year: &year, MaxPrice: &maxPrice}
	mockCarSvc.On("Search", mock.Anything, expectedFilter).Return([]models.Car{{ID: "car-1"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/cars/search?model=corolla&year=2018&max_price=20000", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockCarSvc.AssertExpectations(t)
}

func TestRestCarHandler_SearchCars_BadYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.GET("/v1/cars/search", handler.SearchCars)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/cars/search?year=newish", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockCarSvc.AssertNotCalled(t, "Search")
}

func TestRestCarHandler_ListMyCars(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	handler := handlers.NewRestCarHandler(mockCarSvc, nil, nil, 5000000)

	r := gin.New()
	r.GET("/v1/my/cars", fakeAuth("seller-abc"), handler.ListMyCars)

	cars := []models.Car{{ID: "car-2"}, {ID: "car-1"}}
	mockCarSvc.On("ListBySeller", mock.Anything, "seller-abc").Return(cars, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/cars", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string][]models.Car
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody["cars"], 2)
	mockCarSvc.AssertExpectations(t)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func smallJPEG(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
	return buf.Bytes()
}

func TestRestCarHandler_UploadCarImage_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	mockImageSvc := new(MockImageService)
	mockTaskClient := new(MockAsynqClient)
	handler := handlers.NewRestCarHandler(mockCarSvc, mockImageSvc, mockTaskClient, 5000000)

	r := gin.New()
	r.POST("/v1/cars/:id/image", fakeAuth("seller-abc"), handler.UploadCarImage)

	data := smallJPEG(t)
	imageRef := "assets/img/cars/deadbeef.jpg"
	mockImageSvc.On("Ingest", mock.Anything, data, "photo.jpg").Return(imageRef, nil)
	mockCarSvc.On("AttachImage", mock.Anything, "car-1", "seller-abc", imageRef).Return(nil)
	mockTaskClient.On("Enqueue", mock.Anything, mock.Anything).Return(nil, nil)

	body, contentType := multipartUpload(t, "car_image", "photo.jpg", data)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/cars/car-1/image", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, imageRef, respBody["image_ref"])
	mockCarSvc.AssertExpectations(t)
	mockImageSvc.AssertExpectations(t)
	mockTaskClient.AssertExpectations(t)
}

func TestRestCarHandler_UploadCarImage_AttachFailureRemovesBlob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	mockImageSvc := new(MockImageService)
	handler := handlers.NewRestCarHandler(mockCarSvc, mockImageSvc, nil, 5000000)

	r := gin.New()
	r.POST("/v1/cars/:id/image", fakeAuth("intruder"), handler.UploadCarImage)

	data := smallJPEG(t)
	imageRef := "assets/img/cars/deadbeef.jpg"
	mockImageSvc.On("Ingest", mock.Anything, data, "photo.jpg").Return(imageRef, nil)
	mockCarSvc.On("AttachImage", mock.Anything, "car-1", "intruder", imageRef).Return(apperr.ErrNotOwner)
	// The blob written before the denied attach must be cleaned up.
	mockImageSvc.On("Remove", mock.Anything, imageRef).Return(nil)

	body, contentType := multipartUpload(t, "car_image", "photo.jpg", data)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/cars/car-1/image", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockCarSvc.AssertExpectations(t)
	mockImageSvc.AssertExpectations(t)
}

func TestRestCarHandler_UploadCarImage_UnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	mockImageSvc := new(MockImageService)
	handler := handlers.NewRestCarHandler(mockCarSvc, mockImageSvc, nil, 5000000)

	r := gin.New()
	r.POST("/v1/cars/:id/image", fakeAuth("seller-abc"), handler.UploadCarImage)

	data := []byte("plain text pretending to be a photo")
	mockImageSvc.On("Ingest", mock.Anything, data, "photo.jpg").Return("", apperr.ErrUnsupportedMedia)

	body, contentType := multipartUpload(t, "car_image", "photo.jpg", data)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/cars/car-1/image", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	mockCarSvc.AssertNotCalled(t, "AttachImage")
}

func TestRestCarHandler_UploadCarImage_NoFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	mockImageSvc := new(MockImageService)
	handler := handlers.NewRestCarHandler(mockCarSvc, mockImageSvc, nil, 5000000)

	r := gin.New()
	r.POST("/v1/cars/:id/image", fakeAuth("seller-abc"), handler.UploadCarImage)

	w := postForm(r, "/v1/cars/car-1/image", url.Values{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockImageSvc.AssertNotCalled(t, "Ingest")
}

func TestRestCarHandler_UploadCarImage_EnqueueFailureIsNotFatal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCarSvc := new(MockCarService)
	mockImageSvc := new(MockImageService)
	mockTaskClient := new(MockAsynqClient)
	handler := handlers.NewRestCarHandler(mockCarSvc, mockImageSvc, mockTaskClient, 5000000)

	r := gin.New()
	r.POST("/v1/cars/:id/image", fakeAuth("seller-abc"), handler.UploadCarImage)

	data := smallJPEG(t)
	imageRef := "assets/img/cars/deadbeef.jpg"
	mockImageSvc.On("Ingest", mock.Anything, data, "photo.jpg").Return(imageRef, nil)
	mockCarSvc.On("AttachImage", mock.Anything, "car-1", "seller-abc", imageRef).Return(nil)
	mockTaskClient.On("Enqueue", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	body, contentType := multipartUpload(t, "car_image", "photo.jpg", data)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/cars/car-1/image", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	// The upload already succeeded; a queueing hiccup only loses the thumbnail.
	assert.Equal(t, http.StatusOK, w.Code)
	mockTaskClient.AssertExpectations(t)
}
