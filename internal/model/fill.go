package model

import (
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/hype/types"
)

// Attribution 单笔成交的builder归因结果
// 三态：只有当天完全没有builder数据时才是 AttributionUnknown
type Attribution int8

const (
	AttributionUnknown Attribution = iota
	Attributed
	NotAttributed
)

func (a Attribution) String() string {
	switch a {
	case Attributed:
		return "attributed"
	case NotAttributed:
		return "not_attributed"
	default:
		return "unknown"
	}
}

// Fill 标准化后的一笔成交，生成后不可变
// 排序键 = (TimeMs, Index)，Index 为进入时的序号，保证同毫秒成交的确定性顺序
type Fill struct {
	User      string  `json:"user"`
	Coin      string  `json:"coin"`
	Px        float64 `json:"px"`
	Sz        float64 `json:"sz"`
	IsBuy     bool    `json:"is_buy"`
	TimeMs    int64   `json:"time_ms"`
	Fee       float64 `json:"fee"`
	ClosedPnl float64 `json:"closed_pnl"`
	Dir       string  `json:"dir"`
	Hash      string  `json:"hash"`
	Tid       int64   `json:"tid"`
	Index     int     `json:"-"`
}

// SignedSize 买为正、卖为负
func (f *Fill) SignedSize() float64 {
	if f.IsBuy {
		return f.Sz
	}
	return -f.Sz
}

// Notional 成交名义金额
func (f *Fill) Notional() float64 {
	return f.Px * f.Sz
}

// AttributedFill 带归因标记的成交
type AttributedFill struct {
	Fill
	Attribution Attribution `json:"attribution"`
}

// FillFromOrder 把 API 返回的原始成交转成标准化 Fill
func FillFromOrder(user string, idx int, o *types.UserFillOrder) Fill {
	return Fill{
		User:      user,
		Coin:      o.Coin,
		Px:        o.Price(),
		Sz:        o.Size(),
		IsBuy:     o.IsBuy(),
		TimeMs:    o.Time,
		Fee:       o.FeeAmount(),
		ClosedPnl: o.ClosedPnlAmount(),
		Dir:       o.Dir,
		Hash:      o.Hash,
		Tid:       o.Tid,
		Index:     idx,
	}
}

// ValidateFills 校验成交序列：价格/数量必须为正，时间必须有序
// 非法数据直接报错，不做静默修正
func ValidateFills(fills []Fill) error {
	var prev int64
	for i := range fills {
		f := &fills[i]
		if f.Px <= 0 {
			return errors.WithCode(ecode.InvalidFillErr, "fill price must be positive")
		}
		if f.Sz <= 0 {
			return errors.WithCode(ecode.InvalidFillErr, "fill size must be positive")
		}
		if f.TimeMs < prev {
			return errors.WithCode(ecode.InvalidFillErr, "fills are not ordered by time")
		}
		prev = f.TimeMs
	}
	return nil
}

// BuilderFill builder CSV 里的一笔成交
type BuilderFill struct {
	TimeMs     int64
	User       string
	Coin       string
	IsBuy      bool // CSV side 字段 Bid=买 / Ask=卖
	Px         float64
	Sz         float64
	ClosedPnl  float64
	BuilderFee float64
}
