package generate

import (
	"errors"
	"math"
	"math/rand"

	"market-sim/internal/config"
	"market-sim/internal/order"
)

type priceModel struct {
	mean   float64
	stddev float64
}

// Generator 按统计模型合成随机订单。账户池与价格模型在构造后只读，
// 随机性全部来自注入的随机源，同一种子产生同一订单序列。
type Generator struct {
	accountCount int
	pairs        []string
	models       map[string]priceModel

	amountMean   float64
	amountStddev float64
	amountMin    float64
	priceFloor   float64
	buyBias      float64

	rng *rand.Rand
}

// New 根据市场配置创建生成器。空账户池或空交易对列表视为致命配置错误。
func New(market config.MarketConfig, accountCount int, rng *rand.Rand) (*Generator, error) {
	if accountCount <= 0 {
		return nil, errors.New("generate: 账户池不能为空")
	}
	if len(market.Instruments) == 0 {
		return nil, errors.New("generate: 交易对列表不能为空")
	}
	if rng == nil {
		return nil, errors.New("generate: 随机源不能为空")
	}

	pairs := make([]string, 0, len(market.Instruments))
	models := make(map[string]priceModel, len(market.Instruments))
	for _, inst := range market.Instruments {
		if inst.PairID == "" {
			return nil, errors.New("generate: 交易对标识不能为空")
		}
		pairs = append(pairs, inst.PairID)
		models[inst.PairID] = priceModel{mean: inst.PriceMean, stddev: inst.PriceStddev}
	}

	return &Generator{
		accountCount: accountCount,
		pairs:        pairs,
		models:       models,
		amountMean:   market.AmountMean,
		amountStddev: market.AmountStddev,
		amountMin:    market.AmountMin,
		priceFloor:   market.PriceFloor,
		buyBias:      market.BuyBias,
		rng:          rng,
	}, nil
}

// Next 合成一笔随机订单：账户与交易对均匀抽取，价格与数量取下界截断的
// 正态样本并固定到4位小数，方向按固定偏置做一次伯努利抽样。
func (g *Generator) Next() order.Order {
	accountID := int64(g.rng.Intn(g.accountCount)) + 1
	pair := g.pairs[g.rng.Intn(len(g.pairs))]
	model := g.models[pair]

	price := round4(g.normalBounded(model.mean, model.stddev, g.priceFloor))
	amount := round4(g.normalBounded(g.amountMean, g.amountStddev, g.amountMin))

	side := order.SideSell
	if g.rng.Float64() < g.buyBias {
		side = order.SideBuy
	}

	return order.Order{
		Price:     price,
		Amount:    amount,
		PairID:    pair,
		AccountID: accountID,
		Side:      side,
	}
}

func (g *Generator) normalBounded(mean, stddev, min float64) float64 {
	v := mean + stddev*g.rng.NormFloat64()
	if v < min {
		return min
	}
	return v
}

// round4 将数值固定到4位小数，下游按有界精度消费价格与数量。
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
