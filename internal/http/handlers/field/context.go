package field

import (
	handlershared "github.com/routepilot/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getSalesmanID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "salesman_id")
}
