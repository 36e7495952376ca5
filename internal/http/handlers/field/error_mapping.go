package field

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

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized},
	{target: service.ErrSalesmanDisabled, code: response.CodeForbidden},
}

var visitCommonErrorRules = []mappedHandlerError{
	{target: service.ErrVisitNotFound, code: response.CodeNotFound},
}

var checkInExtraErrorRules = []mappedHandlerError{
	{target: service.ErrTrackerExists, code: response.CodeConflict},
	{target: service.ErrCustomerMismatch, code: response.CodeBadRequest},
}

var checkOutExtraErrorRules = []mappedHandlerError{
	{target: service.ErrTrackerNotFound, code: response.CodeNotFound},
	{target: service.ErrTrackerCheckedOut, code: response.CodeConflict},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
}

var remarksExtraErrorRules = []mappedHandlerError{
	{target: service.ErrRemarksEmpty, code: response.CodeBadRequest},
	{target: service.ErrInvalidOutcome, code: response.CodeBadRequest},
}

func respondLoginError(c *gin.Context, err error) {
	respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "login failed")
}

func respondCheckInError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(visitCommonErrorRules, checkInExtraErrorRules), response.CodeInternal, "check-in failed")
}

func respondCheckOutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(visitCommonErrorRules, checkOutExtraErrorRules), response.CodeInternal, "check-out failed")
}

func respondRemarksError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(visitCommonErrorRules, remarksExtraErrorRules), response.CodeInternal, "failed to update remarks")
}
