package position

import (
	"math"
	"sort"

	"builderboard/internal/model"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
)

// 持仓重建：把带归因标记的成交流折算成逐笔持仓快照和生命周期
// 平均成本法，盈亏全部由本地折算得出，不信任上游给的 closedPnl

// sizeEpsilon 仓位归零判定阈值，成交数量是十进制字符串解析来的，
// 多笔累减后可能留下浮点残渣
const sizeEpsilon = 1e-9

// Result 单币种回放结果，States 与输入成交一一对应
type Result struct {
	States     []model.PositionState
	Lifecycles []model.PositionLifecycle
	// FillTaints 每笔成交所属生命周期的最终污染标记，与输入一一对应
	// 翻仓笔同时属于新旧两个周期，取两者中更差的一个
	FillTaints []model.Taint
}

// lifecycleBuf 进行中的生命周期缓冲
// 污染标记要等周期收口才能确定，期间的快照先挂账，收口时统一回填
type lifecycleBuf struct {
	startMs   int64
	stateIdx  []int
	fillIdx   []int
	sawData   bool
	sawDirty  bool
}

func (b *lifecycleBuf) note(idx int, a model.Attribution) {
	b.fillIdx = append(b.fillIdx, idx)
	if a != model.AttributionUnknown {
		b.sawData = true
	}
	if a == model.NotAttributed {
		b.sawDirty = true
	}
}

// taint 整个周期内完全没有builder数据为 Unknown，
// 有数据但存在未归因成交为 Tainted，否则 Clean
func (b *lifecycleBuf) taint() model.Taint {
	if !b.sawData {
		return model.TaintUnknown
	}
	if b.sawDirty {
		return model.Tainted
	}
	return model.TaintClean
}

// Replay 回放单币种的成交序列，fills 必须按时间升序且同属一个币种
func Replay(coin string, fills []model.AttributedFill) (*Result, error) {
	r := &Result{
		States:     make([]model.PositionState, 0, len(fills)),
		FillTaints: make([]model.Taint, len(fills)),
	}
	assigned := make([]bool, len(fills))

	var netSize, avgEntryPx, cumPnl float64
	var cur *lifecycleBuf

	seal := func(endMs int64, open bool) {
		t := cur.taint()
		for _, si := range cur.stateIdx {
			r.States[si].Taint = t
		}
		for _, fi := range cur.fillIdx {
			if assigned[fi] {
				r.FillTaints[fi] = worseTaint(r.FillTaints[fi], t)
			} else {
				r.FillTaints[fi] = t
				assigned[fi] = true
			}
		}
		lc := model.PositionLifecycle{
			Coin:    coin,
			StartMs: cur.startMs,
			EndMs:   endMs,
			Open:    open,
			Taint:   t,
			States:  make([]model.PositionState, 0, len(cur.stateIdx)),
		}
		for _, si := range cur.stateIdx {
			lc.States = append(lc.States, r.States[si])
		}
		r.Lifecycles = append(r.Lifecycles, lc)
		cur = nil
	}

	for i := range fills {
		f := &fills[i]
		if f.Coin != coin {
			return nil, errors.WithCode(ecode.InvalidFillErr, "fill coin %s does not match %s", f.Coin, coin)
		}
		d := f.SignedSize()
		px := f.Px

		switch {
		case math.Abs(netSize) <= sizeEpsilon:
			// 空仓开新周期
			cur = &lifecycleBuf{startMs: f.TimeMs}
			netSize = d
			avgEntryPx = px
			cur.note(i, f.Attribution)
			r.States = append(r.States, model.PositionState{
				TimeMs: f.TimeMs, Coin: coin,
				NetSize: netSize, AvgEntryPx: avgEntryPx, RealizedPnl: cumPnl,
			})
			cur.stateIdx = append(cur.stateIdx, len(r.States)-1)

		case sameSign(netSize, d):
			// 加仓，摊薄均价
			an, ad := math.Abs(netSize), math.Abs(d)
			avgEntryPx = (an*avgEntryPx + ad*px) / (an + ad)
			netSize += d
			cur.note(i, f.Attribution)
			r.States = append(r.States, model.PositionState{
				TimeMs: f.TimeMs, Coin: coin,
				NetSize: netSize, AvgEntryPx: avgEntryPx, RealizedPnl: cumPnl,
			})
			cur.stateIdx = append(cur.stateIdx, len(r.States)-1)

		default:
			an, ad := math.Abs(netSize), math.Abs(d)
			closeQty := math.Min(an, ad)
			cumPnl += closeQty * (px - avgEntryPx) * sign(netSize)
			rem := ad - an

			switch {
			case rem < -sizeEpsilon:
				// 部分平仓，均价不动
				netSize += d
				cur.note(i, f.Attribution)
				r.States = append(r.States, model.PositionState{
					TimeMs: f.TimeMs, Coin: coin,
					NetSize: netSize, AvgEntryPx: avgEntryPx, RealizedPnl: cumPnl,
				})
				cur.stateIdx = append(cur.stateIdx, len(r.States)-1)

			case rem <= sizeEpsilon:
				// 全平，周期收口
				netSize = 0
				avgEntryPx = 0
				cur.note(i, f.Attribution)
				r.States = append(r.States, model.PositionState{
					TimeMs: f.TimeMs, Coin: coin,
					NetSize: 0, AvgEntryPx: 0, RealizedPnl: cumPnl,
				})
				cur.stateIdx = append(cur.stateIdx, len(r.States)-1)
				seal(f.TimeMs, false)

			default:
				// 翻仓：旧周期在此笔收口，剩余量以成交价开新周期
				// 翻仓笔计入两个周期的归因
				cur.note(i, f.Attribution)
				seal(f.TimeMs, false)

				netSize = sign(d) * rem
				avgEntryPx = px
				cur = &lifecycleBuf{startMs: f.TimeMs}
				cur.note(i, f.Attribution)
				r.States = append(r.States, model.PositionState{
					TimeMs: f.TimeMs, Coin: coin,
					NetSize: netSize, AvgEntryPx: avgEntryPx, RealizedPnl: cumPnl,
				})
				cur.stateIdx = append(cur.stateIdx, len(r.States)-1)
			}
		}
	}

	if cur != nil {
		// 查询窗口收尾时仍持仓，按当前已见成交定污染
		endMs := int64(0)
		if len(fills) > 0 {
			endMs = fills[len(fills)-1].TimeMs
		}
		seal(endMs, true)
	}
	return r, nil
}

// CombinedResult 跨币种合成时间线
// 合成快照不表达净持仓，NetSize 恒为 0，RealizedPnl 是所有币种的累计和
type CombinedResult struct {
	States     []model.PositionState
	Lifecycles []model.PositionLifecycle
	FillTaints []model.Taint
	PerCoin    map[string]*Result
}

// ReplayAll 按币种分组重建，再按原始成交序合成一条总时间线
// 某个时点的合成污染取所有仍在周期内币种里最差的那个
func ReplayAll(fills []model.AttributedFill) (*CombinedResult, error) {
	byCoin := make(map[string][]model.AttributedFill)
	var coins []string
	for _, f := range fills {
		if _, ok := byCoin[f.Coin]; !ok {
			coins = append(coins, f.Coin)
		}
		byCoin[f.Coin] = append(byCoin[f.Coin], f)
	}

	combined := &CombinedResult{
		States:     make([]model.PositionState, 0, len(fills)),
		FillTaints: make([]model.Taint, 0, len(fills)),
		PerCoin:    make(map[string]*Result, len(coins)),
	}
	for _, coin := range coins {
		res, err := Replay(coin, byCoin[coin])
		if err != nil {
			return nil, err
		}
		combined.PerCoin[coin] = res
		combined.Lifecycles = append(combined.Lifecycles, res.Lifecycles...)
	}
	sort.SliceStable(combined.Lifecycles, func(i, j int) bool {
		return combined.Lifecycles[i].StartMs < combined.Lifecycles[j].StartMs
	})

	// 按原始顺序逐笔消费各币种的快照，累加总盈亏
	cursor := make(map[string]int, len(coins))
	lastPnl := make(map[string]float64, len(coins))
	lastState := make(map[string]*model.PositionState, len(coins))
	var totalPnl float64

	for _, f := range fills {
		res := combined.PerCoin[f.Coin]
		k := cursor[f.Coin]
		st := &res.States[k]
		cursor[f.Coin] = k + 1

		totalPnl += st.RealizedPnl - lastPnl[f.Coin]
		lastPnl[f.Coin] = st.RealizedPnl
		lastState[f.Coin] = st
		combined.FillTaints = append(combined.FillTaints, res.FillTaints[k])

		taint := st.Taint
		for coin, ls := range lastState {
			if coin == f.Coin {
				continue
			}
			if math.Abs(ls.NetSize) > sizeEpsilon {
				taint = worseTaint(taint, ls.Taint)
			}
		}
		combined.States = append(combined.States, model.PositionState{
			TimeMs:      f.TimeMs,
			Coin:        "",
			NetSize:     0,
			AvgEntryPx:  0,
			RealizedPnl: totalPnl,
			Taint:       taint,
		})
	}
	return combined, nil
}

// worseTaint 污染程度比较，Tainted 最差，Unknown 次之
func worseTaint(a, b model.Taint) model.Taint {
	if a == model.Tainted || b == model.Tainted {
		return model.Tainted
	}
	if a == model.TaintUnknown || b == model.TaintUnknown {
		return model.TaintUnknown
	}
	return model.TaintClean
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func sign(a float64) float64 {
	if a < 0 {
		return -1
	}
	if a > 0 {
		return 1
	}
	return 0
}
