package request

type TokenRequest struct {
	Password string `json:"password" binding:"required"`
}
