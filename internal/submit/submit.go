package submit

import (
	"context"
	"time"

	"market-sim/internal/order"
)

// Status 表示一次提交的终态。
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Outcome 描述单笔订单的提交结果，失败时附带可读原因。
type Outcome struct {
	Order   order.Order
	Status  Status
	Reason  string
	Elapsed time.Duration
}

// Delivered 报告提交是否被下游接受。
func (o Outcome) Delivered() bool {
	return o.Status == StatusDelivered
}

// Submitter 是订单提交边界。实现必须自行吸收所有失败并折叠为
// Outcome 返回，不向调用方抛出错误，调度器的单笔隔离依赖于此。
type Submitter interface {
	Submit(ctx context.Context, o order.Order) Outcome
}
