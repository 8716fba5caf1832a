package order

// Side 表示订单方向，线路编码与撮合端约定一致：0 买，1 卖。
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// String 返回方向的可读名称。
func (s Side) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// Order 是一次提交尝试的临时值对象，除内容外没有身份，
// 提交落定（成功或失败）后即丢弃。
type Order struct {
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	PairID    string  `json:"pair_id"`
	AccountID int64   `json:"account_id"`
	Side      Side    `json:"type"`
}
