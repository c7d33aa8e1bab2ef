package market

import "time"

// DepthLevel 表示盘口单个档位，附带该价位上挂单的订单号。
type DepthLevel struct {
	Price    int64
	Quantity int64
	OrderIDs []string
}

// Depth 是一份完整的盘口快照：买盘降序，卖盘升序。
// 每次行情推送整体替换，决策侧只读。
type Depth struct {
	Bids []DepthLevel
	Asks []DepthLevel
}

// BestBid 返回买一档，不存在时 ok 为 false。
func (d *Depth) BestBid() (DepthLevel, bool) {
	if d == nil || len(d.Bids) == 0 {
		return DepthLevel{}, false
	}
	return d.Bids[0], true
}

// BestAsk 返回卖一档，不存在时 ok 为 false。
func (d *Depth) BestAsk() (DepthLevel, bool) {
	if d == nil || len(d.Asks) == 0 {
		return DepthLevel{}, false
	}
	return d.Asks[0], true
}

// Trade 表示成交流水中的一笔成交，流水按最新在前排列。
type Trade struct {
	Price int64
}

// SessionClosed 是行情源推送的休市状态值，其余取值一律视为开市。
const SessionClosed = "closed"

// PriceRecord 是落盘保存的价格状态，重启时恢复。
// 价格为 0 表示未知。
type PriceRecord struct {
	LastTradePrice int64
	LastClosePrice int64
	SavedAt        time.Time
}
