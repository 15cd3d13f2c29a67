package api

import (
	"net/http"

	reqdto "coupon-sync/internal/handler/dto/request"
	resdto "coupon-sync/internal/handler/dto/response"
	"coupon-sync/internal/pkg/jwt"
	"coupon-sync/internal/pkg/password"

	"github.com/gin-gonic/gin"
)

// AuthHandler issues admin tokens. This service has a single operator
// account, so authentication is a password check against a configured hash.
type AuthHandler struct {
	tokens            *jwt.Service
	adminPasswordHash string
}

func NewAuthHandler(tokens *jwt.Service, adminPasswordHash string) *AuthHandler {
	return &AuthHandler{
		tokens:            tokens,
		adminPasswordHash: adminPasswordHash,
	}
}

// @Summary Issue admin token
// @Description Exchange the admin password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.TokenRequest true "Token request"
// @Success 200 {object} resdto.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req reqdto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := password.ComparePassword(h.adminPasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid password",
		})
		return
	}

	token, err := h.tokens.GenerateToken(jwt.SubjectAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}
