package order

// groupKey 按 (方向, 类型) 聚合市价单，按 (方向, 类型, 价格) 聚合限价单。
type groupKey struct {
	side  Side
	kind  Kind
	price int64
}

// Aggregate 把同一周期内落在相同价位的意图合并成单笔委托，
// 避免向撮合接口倾泻大量近乎相同的小单。
//
// 合并规则：数量求和；persistent 取逻辑或；tag 与 ExpireAfter
// 采用"最后一个非空值生效"，以意图的插入顺序为准。
// 输出顺序与各组首次出现的顺序一致。
func Aggregate(intents []Intent) []Order {
	index := make(map[groupKey]int, len(intents))
	out := make([]Order, 0, len(intents))

	for _, in := range intents {
		key := groupKey{side: in.Side, kind: in.Kind}
		if in.Kind == KindLimit {
			key.price = in.Price
		}

		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			agg := Order{Side: in.Side, Kind: in.Kind}
			if in.Kind == KindLimit {
				agg.Price = in.Price
			}
			out = append(out, agg)
		}

		agg := &out[pos]
		agg.Quantity += in.Quantity
		if in.Persistent {
			agg.Persistent = true
		}
		if in.Tag != "" {
			agg.Tag = in.Tag
		}
		if in.ExpireAfter > 0 {
			agg.ExpireAfter = in.ExpireAfter
		}
	}

	return out
}
