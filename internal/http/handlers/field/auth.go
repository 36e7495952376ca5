package field

import (
	"github.com/routepilot/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 外勤端登录入参
type LoginRequest struct {
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 业务员登录，签发外勤端 token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	salesman, token, expiresAt, err := h.FieldAuthService.Login(req.Code, req.Password)
	if err != nil {
		respondLoginError(c, err)
		return
	}

	requestLog(c).Infow("field_login_succeeded",
		"salesman_id", salesman.ID,
		"code", salesman.Code,
	)

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"salesman": gin.H{
			"id":        salesman.ID,
			"code":      salesman.Code,
			"name":      salesman.Name,
			"territory": salesman.Territory,
		},
	})
}
