package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/routepilot/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// SalesmanAuthState 业务员鉴权快照
// 仅用于服务端 Redis 缓存，避免每个请求重复查询数据库
type SalesmanAuthState struct {
	SalesmanID uint   `json:"salesman_id"`
	Code       string `json:"code"`
	IsActive   bool   `json:"is_active"`
	UpdatedAt  int64  `json:"updated_at"`
}

func salesmanAuthStateKey(salesmanID uint) string {
	return fmt.Sprintf("auth:salesman:%d", salesmanID)
}

// BuildSalesmanAuthState 从业务员模型构建鉴权快照
func BuildSalesmanAuthState(salesman *models.Salesman) *SalesmanAuthState {
	if salesman == nil {
		return nil
	}
	return &SalesmanAuthState{
		SalesmanID: salesman.ID,
		Code:       salesman.Code,
		IsActive:   salesman.IsActive,
		UpdatedAt:  time.Now().Unix(),
	}
}

// GetSalesmanAuthState 获取业务员鉴权快照
func GetSalesmanAuthState(ctx context.Context, salesmanID uint) (*SalesmanAuthState, bool, error) {
	if salesmanID == 0 {
		return nil, false, nil
	}
	var state SalesmanAuthState
	hit, err := GetJSON(ctx, salesmanAuthStateKey(salesmanID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetSalesmanAuthState 写入业务员鉴权快照
func SetSalesmanAuthState(ctx context.Context, state *SalesmanAuthState) error {
	if state == nil || state.SalesmanID == 0 {
		return nil
	}
	return SetJSON(ctx, salesmanAuthStateKey(state.SalesmanID), state, authStateCacheTTL)
}

// DelSalesmanAuthState 删除业务员鉴权快照，停用账号后调用即时生效
func DelSalesmanAuthState(ctx context.Context, salesmanID uint) error {
	if salesmanID == 0 {
		return nil
	}
	return Del(ctx, salesmanAuthStateKey(salesmanID))
}
