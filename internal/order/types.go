package order

import "time"

// Side 表示委托方向。
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite 返回对手方向。
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Kind 表示委托类型。市价单不携带价格。
type Kind string

const (
	KindMarket Kind = "market"
	KindLimit  Kind = "limit"
)

// TagWhale 标记大户扫单行为产生的委托，提交时会额外打日志。
const TagWhale = "WHALE"

// Intent 是生成器在单个决策周期内产出的最小委托意图。
// 生成后不再修改，立即交给聚合器消费。
type Intent struct {
	Side       Side
	Kind       Kind
	Quantity   int64
	Price      int64 // 仅限价单有效，始终为最小变动价位的整数倍
	Persistent bool
	Tag        string
	// ExpireAfter 大于零时，委托成交回执返回后会在该延迟后被自动撤单。
	ExpireAfter time.Duration
}

// Market 构造市价意图。
func Market(side Side, quantity int64) Intent {
	return Intent{Side: side, Kind: KindMarket, Quantity: quantity}
}

// Limit 构造限价意图。
func Limit(side Side, price, quantity int64) Intent {
	return Intent{Side: side, Kind: KindLimit, Price: price, Quantity: quantity}
}

// Order 是聚合后的最终委托，数量为同组意图之和。
type Order struct {
	Side        Side
	Kind        Kind
	Quantity    int64
	Price       int64
	Persistent  bool
	Tag         string
	ExpireAfter time.Duration
}
