package types

import "fmt"

// FetchError 行情获取失败（按交易对隔离，跳过即可恢复）
type FetchError struct {
	Exchange string
	Symbol   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("获取行情失败 [%s] %s: %v", e.Exchange, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InsufficientDataError K线数量不足以计算指标
type InsufficientDataError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("K线数据不足 %s: 现有%d根，需要%d根", e.Symbol, e.Have, e.Need)
}

// StateIOError 状态读写失败（退回默认值或跳过本次持久化）
type StateIOError struct {
	Op  string // load / save
	Err error
}

func (e *StateIOError) Error() string {
	return fmt.Sprintf("状态%s失败: %v", e.Op, e.Err)
}

func (e *StateIOError) Unwrap() error { return e.Err }

// NotificationError 通知发送失败（记录日志，不阻塞其他通道）
type NotificationError struct {
	Sink string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("通知发送失败 [%s]: %v", e.Sink, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
