package planner

import (
	"errors"

	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
// 业务错误文本本身即为面向调用方的消息，包装后的上下文一并透出。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, err.Error(), nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var templateSaveErrorRules = []mappedHandlerError{
	{target: service.ErrCycleWeeksInvalid, code: response.CodeBadRequest},
	{target: service.ErrWeekNoOutOfRange, code: response.CodeBadRequest},
	{target: service.ErrDuplicateDayCustomer, code: response.CodeBadRequest},
	{target: service.ErrInvalidWeekday, code: response.CodeBadRequest},
	{target: service.ErrTemplateRowsEmpty, code: response.CodeBadRequest},
	{target: service.ErrSalesmanNotFound, code: response.CodeNotFound},
	{target: service.ErrCustomerNotFound, code: response.CodeNotFound},
	{target: service.ErrTemplateNotFound, code: response.CodeNotFound},
}

var templateCopyErrorRules = []mappedHandlerError{
	{target: service.ErrTemplateNotFound, code: response.CodeNotFound},
	{target: service.ErrWeekNoOutOfRange, code: response.CodeBadRequest},
	{target: service.ErrTemplateRowsEmpty, code: response.CodeBadRequest},
}

var visitTrackerLookupErrorRules = []mappedHandlerError{
	{target: service.ErrVisitNotFound, code: response.CodeNotFound},
	{target: service.ErrTrackerNotFound, code: response.CodeNotFound},
}

func respondTemplateSaveError(c *gin.Context, err error) {
	respondWithMappedError(c, err, templateSaveErrorRules, response.CodeInternal, "failed to save route template")
}

func respondTemplateCopyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, templateCopyErrorRules, response.CodeInternal, "failed to copy template rows")
}

func respondVisitTrackerLookupError(c *gin.Context, err error) {
	respondWithMappedError(c, err, visitTrackerLookupErrorRules, response.CodeInternal, "failed to resolve visit tracker")
}
