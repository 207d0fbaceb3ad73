package storage

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"smart-signal-sentry/pkg/types"
)

// Archive MySQL信号归档（可选组件，用于事后分析发出过的信号）
type Archive struct {
	db     *gorm.DB
	config types.MySQLConfig
}

// EmittedSignal 已发出信号归档模型
type EmittedSignal struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"type:varchar(20);not null;index:idx_symbol_time" json:"symbol"`
	EmittedAt  int64     `gorm:"not null;index:idx_symbol_time" json:"emitted_at"`
	Direction  string    `gorm:"type:enum('LONG','SHORT');not null" json:"direction"`
	Score      int       `gorm:"not null" json:"score"`
	EntryPrice float64   `gorm:"type:decimal(20,8);not null" json:"entry_price"`
	StopLoss   float64   `gorm:"type:decimal(20,8);not null" json:"stop_loss"`
	TakeProfit float64   `gorm:"type:decimal(20,8);not null" json:"take_profit"`
	Outcome    string    `gorm:"type:varchar(16);default:'OPEN'" json:"outcome"` // OPEN / INVALIDATED / CLOSED
	ClosedAt   *int64    `json:"closed_at"`
	ExitPrice  *float64  `gorm:"type:decimal(20,8)" json:"exit_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyPerformance 按日按交易对的信号统计
type DailyPerformance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Symbol       string    `gorm:"type:varchar(20);not null;uniqueIndex:uk_symbol_date" json:"symbol"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uk_symbol_date" json:"date"`
	TotalSignals int       `gorm:"default:0" json:"total_signals"`
	LongSignals  int       `gorm:"default:0" json:"long_signals"`
	ShortSignals int       `gorm:"default:0" json:"short_signals"`
	AvgScore     *float64  `gorm:"type:decimal(3,2)" json:"avg_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewArchive 创建信号归档
func NewArchive(config types.MySQLConfig) (*Archive, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %v", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	archive := &Archive{
		db:     db,
		config: config,
	}

	if err := archive.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %v", err)
	}

	zap.L().Info("✅ MySQL信号归档已启用",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("database", config.Database))

	return archive, nil
}

// AutoMigrate 自动迁移表结构
func (a *Archive) AutoMigrate() error {
	return a.db.AutoMigrate(
		&EmittedSignal{},
		&DailyPerformance{},
	)
}

// SaveEmitted 归档一条新发出的信号并更新当日统计
func (a *Archive) SaveEmitted(sig *types.TrackedSignal) error {
	row := &EmittedSignal{
		Symbol:     sig.Symbol,
		EmittedAt:  sig.EmittedAt.Unix(),
		Direction:  sig.Direction,
		Score:      sig.Score,
		EntryPrice: sig.EntryPrice,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Outcome:    "OPEN",
		CreatedAt:  time.Now(),
	}

	if err := a.db.Create(row).Error; err != nil {
		return err
	}

	return a.updateDailyPerformance(sig)
}

// SaveOutcome 记录信号结局（止损失效或止盈平仓）
func (a *Archive) SaveOutcome(symbol string, emittedAt time.Time, outcome string, exitPrice float64, closedAt time.Time) error {
	closed := closedAt.Unix()
	return a.db.Model(&EmittedSignal{}).
		Where("symbol = ? AND emitted_at = ?", symbol, emittedAt.Unix()).
		Updates(map[string]interface{}{
			"outcome":    outcome,
			"exit_price": exitPrice,
			"closed_at":  closed,
		}).Error
}

// updateDailyPerformance 更新按日统计，不存在则创建
func (a *Archive) updateDailyPerformance(sig *types.TrackedSignal) error {
	today := sig.EmittedAt.UTC().Truncate(24 * time.Hour)
	score := float64(sig.Score)

	var perf DailyPerformance
	result := a.db.Where("symbol = ? AND date = ?", sig.Symbol, today).First(&perf)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		perf = DailyPerformance{
			Symbol:       sig.Symbol,
			Date:         today,
			TotalSignals: 1,
			AvgScore:     &score,
		}

		if sig.Direction == types.DirectionLong {
			perf.LongSignals = 1
		} else {
			perf.ShortSignals = 1
		}

		return a.db.Create(&perf).Error
	} else if result.Error != nil {
		return result.Error
	}

	updates := map[string]interface{}{
		"total_signals": perf.TotalSignals + 1,
	}

	if sig.Direction == types.DirectionLong {
		updates["long_signals"] = perf.LongSignals + 1
	} else {
		updates["short_signals"] = perf.ShortSignals + 1
	}

	if perf.AvgScore != nil {
		newAvg := ((*perf.AvgScore)*float64(perf.TotalSignals) + score) / float64(perf.TotalSignals+1)
		updates["avg_score"] = newAvg
	} else {
		updates["avg_score"] = score
	}

	return a.db.Model(&perf).Where("id = ?", perf.ID).Updates(updates).Error
}

// GetEmittedSignals 查询某交易对最近发出的信号
func (a *Archive) GetEmittedSignals(symbol string, limit int) ([]EmittedSignal, error) {
	var signals []EmittedSignal
	err := a.db.Where("symbol = ?", symbol).
		Order("emitted_at DESC").
		Limit(limit).
		Find(&signals).Error

	return signals, err
}

// Close 关闭数据库连接
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
