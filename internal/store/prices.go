package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"liquidity-bot/internal/market"
)

// PriceBook 把价格状态持久化到单行表，实现 market.PriceStore。
type PriceBook struct {
	db *sql.DB
}

// NewPriceBook 基于已初始化的存储创建价格簿。
func NewPriceBook(s *Store) *PriceBook {
	return &PriceBook{db: s.DB()}
}

// SavePriceRecord 全量覆盖当前价格状态。
func (p *PriceBook) SavePriceRecord(ctx context.Context, rec market.PriceRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO price_state (id, last_trade_price, last_close_price, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_trade_price = excluded.last_trade_price,
			last_close_price = excluded.last_close_price,
			saved_at = excluded.saved_at
	`, rec.LastTradePrice, rec.LastClosePrice, rec.SavedAt)
	if err != nil {
		return fmt.Errorf("保存价格状态失败: %w", err)
	}
	return nil
}

// LoadPriceRecord 读取上次保存的价格状态，没有记录不算错误。
func (p *PriceBook) LoadPriceRecord(ctx context.Context) (market.PriceRecord, bool, error) {
	var rec market.PriceRecord
	err := p.db.QueryRowContext(ctx, `
		SELECT last_trade_price, last_close_price, saved_at
		FROM price_state WHERE id = 1
	`).Scan(&rec.LastTradePrice, &rec.LastClosePrice, &rec.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.PriceRecord{}, false, nil
	}
	if err != nil {
		return market.PriceRecord{}, false, fmt.Errorf("读取价格状态失败: %w", err)
	}
	return rec, true, nil
}
