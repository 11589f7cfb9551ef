package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/auth"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/config"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
)

// RestSellerHandler handles REST requests for seller accounts.
type RestSellerHandler struct {
	cfg           *config.Config
	sellerService services.ISellerService
}

// NewRestSellerHandler creates a new RestSellerHandler.
func NewRestSellerHandler(cfg *config.Config, sellerService services.ISellerService) *RestSellerHandler {
	return &RestSellerHandler{cfg: cfg, sellerService: sellerService}
}

// Register handles POST /v1/register. Fields arrive as form data; the
// service validates and reports every violated rule at once.
func (h *RestSellerHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Address:   c.PostForm("address"),
		Phone:     c.PostForm("phone"),
		Email:     c.PostForm("email"),
		Username:  c.PostForm("username"),
		Password:  c.PostForm("password"),
	}

	seller, err := h.sellerService.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"seller": seller.Public()})
}

// Login handles POST /v1/login and returns a bearer token for the seller.
func (h *RestSellerHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	seller, err := h.sellerService.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateJWT(seller.ID, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"seller": seller.Public(),
	})
}
