package types

import "github.com/spf13/cast"

// 用户已成交的订单，px/sz/fee 按 Hyperliquid API 原样为字符串
type UserFillOrder struct {
	ClosedPnl     string `json:"closedPnl"`
	Coin          string `json:"coin"`
	Crossed       bool   `json:"crossed"`
	Dir           string `json:"dir"`
	Hash          string `json:"hash"`
	Oid           int    `json:"oid"`
	Px            string `json:"px"`
	Side          string `json:"side"` // "B" 买 / "A" 卖
	StartPosition string `json:"startPosition"`
	Sz            string `json:"sz"`
	Time          int64  `json:"time"`
	Fee           string `json:"fee"`
	FeeToken      string `json:"feeToken"`
	BuilderFee    string `json:"builderFee"`
	Tid           int64  `json:"tid"`
}

func (f *UserFillOrder) Price() float64 {
	return cast.ToFloat64(f.Px)
}

func (f *UserFillOrder) Size() float64 {
	return cast.ToFloat64(f.Sz)
}

func (f *UserFillOrder) FeeAmount() float64 {
	return cast.ToFloat64(f.Fee)
}

func (f *UserFillOrder) ClosedPnlAmount() float64 {
	return cast.ToFloat64(f.ClosedPnl)
}

func (f *UserFillOrder) IsBuy() bool {
	return f.Side == "B"
}

// SignedSize 买为正、卖为负
func (f *UserFillOrder) SignedSize() float64 {
	if f.IsBuy() {
		return f.Size()
	}
	return -f.Size()
}
