package model

import "strings"

// Taint 仓位生命周期级别的污染标记
// Clean: 周期内全部成交都归因到目标builder
// Tainted: 周期内至少有一笔未归因成交
// TaintUnknown: 周期覆盖的日期完全没有builder参考数据
type Taint int8

const (
	TaintUnknown Taint = iota
	TaintClean
	Tainted
)

func (t Taint) String() string {
	switch t {
	case TaintClean:
		return "clean"
	case Tainted:
		return "tainted"
	default:
		return "unknown"
	}
}

// MarshalJSON 按字符串输出，前端不需要理解枚举值
func (t Taint) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON 反向解析，redis缓存回读时用到
func (t *Taint) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "clean":
		*t = TaintClean
	case "tainted":
		*t = Tainted
	default:
		*t = TaintUnknown
	}
	return nil
}

// PositionState 重放一笔成交后的仓位快照
type PositionState struct {
	TimeMs      int64   `json:"time_ms"`
	Coin        string  `json:"coin"`
	NetSize     float64 `json:"net_size"`      // 带符号，0 表示空仓
	AvgEntryPx  float64 `json:"avg_entry_px"`  // 平均开仓价
	RealizedPnl float64 `json:"realized_pnl"`  // 累计已实现盈亏
	Taint       Taint   `json:"taint"`         // 所属生命周期的污染标记
}

// IsFlat 是否空仓
func (s *PositionState) IsFlat() bool {
	return s.NetSize == 0
}

// PositionLifecycle 一段从空仓到空仓的完整持仓周期
// 全平收尾的周期含最后的空仓状态；被翻仓终结的周期没有空仓状态，
// 翻仓那笔的快照归属新周期
type PositionLifecycle struct {
	Coin    string          `json:"coin"`
	StartMs int64           `json:"start_ms"`
	EndMs   int64           `json:"end_ms"` // 周期尚未结束时为最后一笔成交时间
	Open    bool            `json:"open"`   // 查询窗口结束时是否仍持仓
	Taint   Taint           `json:"taint"`
	States  []PositionState `json:"states"`
}
