package service

import "errors"

// 领域错误定义。handler 层通过 errors.Is 映射为响应码：
// 校验类 400、冲突类 409、未找到类 404。
var (
	ErrInvalidCredentials = errors.New("invalid code or password")
	ErrSalesmanDisabled   = errors.New("salesman is disabled")

	ErrTemplateNotFound = errors.New("route template not found")
	ErrSalesmanNotFound = errors.New("salesman not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVisitNotFound    = errors.New("visit not found")
	ErrOrderNotFound    = errors.New("sales order not found")
	ErrTrackerNotFound  = errors.New("tracker event not found")

	ErrTrackerExists     = errors.New("tracker event already exists for visit")
	ErrTrackerCheckedOut = errors.New("tracker event already checked out")

	ErrCycleWeeksInvalid    = errors.New("cycle weeks must be at least 1")
	ErrWeekNoOutOfRange     = errors.New("week number out of range")
	ErrDuplicateDayCustomer = errors.New("duplicate day and customer across weeks")
	ErrInvalidWeekday       = errors.New("invalid day of week")
	ErrCustomerMismatch     = errors.New("customer does not match visit")
	ErrInvalidOutcome       = errors.New("invalid visit outcome")
	ErrRemarksEmpty         = errors.New("remarks must not be empty")
	ErrTemplateRowsEmpty    = errors.New("route template has no rows")
)
