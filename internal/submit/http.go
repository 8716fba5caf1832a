package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"market-sim/internal/config"
	"market-sim/internal/order"
)

const maxReasonLen = 200

// HTTPSubmitter 通过订单接收服务的 REST 接口提交订单。
// 底层连接池由 resty 维护，同一 tick 内的并发请求安全复用连接。
type HTTPSubmitter struct {
	client *resty.Client
	path   string
}

// NewHTTPSubmitter 创建 HTTP 提交器，单笔请求受 cfg.Timeout 约束，
// 超时会作为 Failed 落定而不是悬挂整批。
func NewHTTPSubmitter(cfg config.TargetConfig) *HTTPSubmitter {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &HTTPSubmitter{
		client: client,
		path:   cfg.OrderPath,
	}
}

// Submit 提交单笔订单。传输错误、超时与非 2xx 响应一律折叠为
// Failed，不重试，永远不向调用方返回错误。
func (s *HTTPSubmitter) Submit(ctx context.Context, o order.Order) Outcome {
	start := time.Now()

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(o).
		Post(s.path)

	outcome := Outcome{
		Order:   o,
		Status:  StatusDelivered,
		Elapsed: time.Since(start),
	}

	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
	case !resp.IsSuccess():
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), trimReason(resp.String()))
	}

	return outcome
}

func trimReason(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxReasonLen {
		return body[:maxReasonLen]
	}
	return body
}
