package main

import (
	"fmt"
	"time"

	"github.com/routepilot/internal/config"
	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示账号统一使用该密码
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Demo-Pass-2024"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	// 业务员
	salesmen := []models.Salesman{
		{Code: "SM-001", Name: "陈志强", Phone: "13800000001", Territory: "East", PasswordHash: string(passwordHash), IsActive: true},
		{Code: "SM-002", Name: "李晓梅", Phone: "13800000002", Territory: "West", PasswordHash: string(passwordHash), IsActive: true},
	}
	for _, sm := range salesmen {
		var existing models.Salesman
		if err := models.DB.Where("code = ?", sm.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&sm).Error; err != nil {
				stdLog.Printf("Failed to create salesman %s: %v", sm.Code, err)
			} else {
				stdLog.Printf("Created salesman: %s", sm.Code)
			}
		} else {
			stdLog.Printf("Salesman already exists: %s", sm.Code)
		}
	}

	// 客户
	coord := func(v float64) *float64 { return &v }
	customers := []models.Customer{
		{Code: "CU-001", Name: "华联超市（滨江店）", Address: "滨江路 18 号", Latitude: coord(31.2304), Longitude: coord(121.4737), IsActive: true},
		{Code: "CU-002", Name: "百家便利（中山路）", Address: "中山路 99 号", Latitude: coord(31.2241), Longitude: coord(121.4812), IsActive: true},
		{Code: "CU-003", Name: "永辉生活（城东）", Address: "东环路 6 号", Latitude: coord(31.2190), Longitude: coord(121.5021), IsActive: true},
		{Code: "CU-004", Name: "社区小卖部（西门）", Address: "西门街 3 号", IsActive: true},
	}
	for _, cu := range customers {
		var existing models.Customer
		if err := models.DB.Where("code = ?", cu.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cu).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", cu.Code, err)
			} else {
				stdLog.Printf("Created customer: %s", cu.Code)
			}
		} else {
			stdLog.Printf("Customer already exists: %s", cu.Code)
		}
	}

	var salesman models.Salesman
	if err := models.DB.Where("code = ?", "SM-001").First(&salesman).Error; err != nil {
		stdLog.Fatalf("Failed to load seeded salesman: %v", err)
	}
	customerIDs := map[string]uint{}
	var customerList []models.Customer
	if err := models.DB.Where("code IN ?", []string{"CU-001", "CU-002", "CU-003", "CU-004"}).Find(&customerList).Error; err != nil {
		stdLog.Fatalf("Failed to load seeded customers: %v", err)
	}
	for _, cu := range customerList {
		customerIDs[cu.Code] = cu.ID
	}

	// 双周轮换路线模板：单周跑滨江/中山，双周跑城东/西门
	templateName := "东区双周轮换路线"
	var existingTemplate models.RouteTemplate
	if err := models.DB.Where("salesman_id = ? AND name = ?", salesman.ID, templateName).First(&existingTemplate).Error; err != nil {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // 周一，作为轮换锚点
		template := models.RouteTemplate{
			SalesmanID:      salesman.ID,
			Name:            templateName,
			StartDate:       &start,
			CycleWeeks:      2,
			CycleAnchorDate: &start,
			Status:          service.TemplateStatusFor(false, &start, nil, time.Now().UTC()),
			Rows: []models.RouteDayRow{
				{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: customerIDs["CU-001"], TimeSlot: "09:00", ExpectedDurationMinutes: 45},
				{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: customerIDs["CU-002"], TimeSlot: "11:00", ExpectedDurationMinutes: 30},
				{WeekNo: 1, DayOfWeek: constants.WeekdayThursday, CustomerID: customerIDs["CU-001"], TimeSlot: "14:00", ExpectedDurationMinutes: 30},
				{WeekNo: 2, DayOfWeek: constants.WeekdayMonday, CustomerID: customerIDs["CU-003"], TimeSlot: "09:30", ExpectedDurationMinutes: 60},
				{WeekNo: 2, DayOfWeek: constants.WeekdayWednesday, CustomerID: customerIDs["CU-004"], TimeSlot: "10:00", ExpectedDurationMinutes: 20},
			},
		}
		if err := models.DB.Create(&template).Error; err != nil {
			stdLog.Printf("Failed to create route template: %v", err)
		} else {
			stdLog.Printf("Created route template: %s", templateName)
		}
	} else {
		stdLog.Printf("Route template already exists: %s", templateName)
	}

	// 示例销售订单，供离店打卡关联
	orderNo := "SO-20240108-0001"
	var existingOrder models.SalesOrder
	if err := models.DB.Where("order_no = ?", orderNo).First(&existingOrder).Error; err != nil {
		grandTotal, err := models.NewMoneyFromString("1280.50")
		if err != nil {
			stdLog.Fatalf("Failed to parse order amount: %v", err)
		}
		order := models.SalesOrder{
			OrderNo:    orderNo,
			SalesmanID: salesman.ID,
			CustomerID: customerIDs["CU-001"],
			Status:     constants.SalesOrderStatusSubmitted,
			Currency:   "CNY",
			GrandTotal: grandTotal,
			OrderDate:  time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Printf("Failed to create sales order: %v", err)
		} else {
			stdLog.Printf("Created sales order: %s", orderNo)
		}
	} else {
		stdLog.Printf("Sales order already exists: %s", orderNo)
	}

	fmt.Println("Seed finished.")
}
