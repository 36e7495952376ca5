package constants

// 路线模板状态常量
const (
	TemplateStatusInactive  = "inactive"
	TemplateStatusDraft     = "draft"
	TemplateStatusScheduled = "scheduled"
	TemplateStatusActive    = "active"
	TemplateStatusExpired   = "expired"
)

// 打卡记录状态常量
const (
	TrackerStatusCheckedIn  = "checked_in"
	TrackerStatusCheckedOut = "checked_out"
)

// 拜访执行状态常量（对外展示）
const (
	VisitStateNotStarted = "NotStarted"
	VisitStateCheckedIn  = "CheckedIn"
	VisitStateCheckedOut = "CheckedOut"
)

// 拜访结果常量
const (
	VisitOutcomeOrder     = "Order"
	VisitOutcomeNoOrder   = "No Order"
	VisitOutcomeComplaint = "Complaint"
	VisitOutcomeInfoOnly  = "Info Only"
)

// VisitOutcomes 合法的拜访结果集合
var VisitOutcomes = []string{
	VisitOutcomeOrder,
	VisitOutcomeNoOrder,
	VisitOutcomeComplaint,
	VisitOutcomeInfoOnly,
}

// 定位精度分级常量
const (
	AccuracyFlagNA     = "N/A"
	AccuracyFlagGood   = "Good"
	AccuracyFlagMedium = "Medium"
	AccuracyFlagPoor   = "Poor"
)

// 定位精度分级阈值（米）
const (
	AccuracyGoodMeters   = 20.0
	AccuracyMediumMeters = 50.0
)

// 星期名称常量（与 time.Weekday.String() 一致）
const (
	WeekdayMonday    = "Monday"
	WeekdayTuesday   = "Tuesday"
	WeekdayWednesday = "Wednesday"
	WeekdayThursday  = "Thursday"
	WeekdayFriday    = "Friday"
	WeekdaySaturday  = "Saturday"
	WeekdaySunday    = "Sunday"
)

// Weekdays 合法的星期名称集合
var Weekdays = []string{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
	WeekdaySunday,
}

// 销售订单状态常量
const (
	SalesOrderStatusDraft     = "draft"
	SalesOrderStatusSubmitted = "submitted"
	SalesOrderStatusCanceled  = "canceled"
)

// 日汇总行状态常量
const (
	ReportRowCompleted = "Completed"
	ReportRowMissed    = "Missed"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskMaterializeDailyPlan = "route:materialize_daily_plan"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "rp"
)
