package market

// PriceScale 定义价格坐标：最小变动价位与价格下限。
// 核心产出的所有价格都必须是 TickSize 的非负整数倍，且不低于 MinPrice。
type PriceScale struct {
	TickSize int64
	MinPrice int64
}

// NearestTick 把任意价格吸附到最近的合法档位：
// 先抬升到下限，再四舍五入到 TickSize 整数倍，
// 若取整后跌破下限则再向上进到首个不低于下限的档位。
func (s PriceScale) NearestTick(price int64) int64 {
	if price < s.MinPrice {
		price = s.MinPrice
	}
	rounded := (price + s.TickSize/2) / s.TickSize * s.TickSize
	if rounded < s.MinPrice {
		rounded = (s.MinPrice + s.TickSize - 1) / s.TickSize * s.TickSize
	}
	return rounded
}

// Floor 仅做下限保护，不改变档位。
func (s PriceScale) Floor(price int64) int64 {
	if price < s.MinPrice {
		return s.MinPrice
	}
	return price
}
