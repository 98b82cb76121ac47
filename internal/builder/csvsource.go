package builder

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/singleflight"

	"builderboard/internal/consts"
	"builderboard/internal/model"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/hype/rest"
	"builderboard/pkg/logger"
)

// CsvSource 按日期拉取并缓存 builder 成交明细
// 上游按天发布 lz4 压缩的 CSV，文件不会追加修改，进程内缓存即可
type CsvSource struct {
	client  *rest.HyperliquidRestClient
	builder string
	cache   *lru.Cache // date -> dayFills
	group   singleflight.Group
}

// dayFills 单日的解析结果，available=false 表示当天文件未发布
type dayFills struct {
	fills     []model.BuilderFill
	available bool
}

func NewCsvSource(client *rest.HyperliquidRestClient, builderAddress string, cacheSize int) (*CsvSource, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, ecode.Unknown, "init builder csv cache failed")
	}
	return &CsvSource{
		client:  client,
		builder: strings.ToLower(builderAddress),
		cache:   cache,
	}, nil
}

// FillsForDate 拉取单日数据，date 格式 YYYYMMDD
// 同一日期的并发请求用 singleflight 合并，只打一次上游
func (s *CsvSource) FillsForDate(ctx context.Context, date string) ([]model.BuilderFill, bool, error) {
	if v, ok := s.cache.Get(date); ok {
		day := v.(*dayFills)
		return day.fills, day.available, nil
	}

	v, err, _ := s.group.Do(date, func() (interface{}, error) {
		return s.fetchDate(ctx, date)
	})
	if err != nil {
		return nil, false, err
	}
	day := v.(*dayFills)
	return day.fills, day.available, nil
}

func (s *CsvSource) fetchDate(ctx context.Context, date string) (*dayFills, error) {
	raw, err := s.client.BuilderFillsCSV(ctx, s.builder, date)
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			// 当天文件未发布，缓存空结果避免反复探测
			day := &dayFills{available: false}
			s.cache.Add(date, day)
			return day, nil
		}
		return nil, err
	}

	fills, err := parseBuilderCSV(raw)
	if err != nil {
		// 解析失败按无数据降级，不让单日脏文件拖垮整个请求
		logger.Error("parse builder csv failed",
			logger.Pair("date", date), logger.Pair("err", err.Error()))
		day := &dayFills{available: false}
		s.cache.Add(date, day)
		return day, nil
	}

	day := &dayFills{fills: fills, available: true}
	s.cache.Add(date, day)
	return day, nil
}

// FillsForRange 取覆盖 [fromMs, toMs] 的所有日期并过滤到指定用户
// 第二个返回值表示区间内是否至少有一天的数据可用，全部缺失时调用方应降级 Unknown
func (s *CsvSource) FillsForRange(ctx context.Context, userAddress string, fromMs, toMs int64) ([]model.BuilderFill, bool, error) {
	user := strings.ToLower(userAddress)
	var all []model.BuilderFill
	anyAvailable := false

	from := time.UnixMilli(fromMs).UTC()
	to := time.UnixMilli(toMs).UTC()
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.Add(24 * time.Hour) {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}
		fills, available, err := s.FillsForDate(ctx, d.Format(consts.DateLayout))
		if err != nil {
			return nil, false, err
		}
		if !available {
			continue
		}
		anyAvailable = true
		for _, f := range fills {
			if f.User == user && f.TimeMs >= fromMs && f.TimeMs <= toMs {
				all = append(all, f)
			}
		}
	}
	return all, anyAvailable, nil
}

// parseBuilderCSV 解析 lz4 帧压缩的成交明细
// 列首行为表头，按列名取值，不依赖列顺序
func parseBuilderCSV(raw []byte) ([]model.BuilderFill, error) {
	reader := csv.NewReader(lz4.NewReader(bytes.NewReader(raw)))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, ecode.UpstreamErr, "read builder csv header failed")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"time", "user", "coin", "side", "px", "sz"} {
		if _, ok := col[required]; !ok {
			return nil, errors.WithCode(ecode.UpstreamErr, "builder csv missing column %s", required)
		}
	}

	var fills []model.BuilderFill
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, ecode.UpstreamErr, "read builder csv row failed")
		}
		f, err := parseBuilderRow(record, col)
		if err != nil {
			return nil, err
		}
		fills = append(fills, f)
	}
	return fills, nil
}

func parseBuilderRow(record []string, col map[string]int) (model.BuilderFill, error) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	ts, err := time.Parse(time.RFC3339, get("time"))
	if err != nil {
		// 发布端偶尔不带时区后缀，按 UTC 兜底
		ts, err = time.ParseInLocation("2006-01-02T15:04:05", get("time"), time.UTC)
		if err != nil {
			return model.BuilderFill{}, errors.Wrap(err, ecode.UpstreamErr, "parse builder fill time failed")
		}
	}
	px, err := strconv.ParseFloat(get("px"), 64)
	if err != nil {
		return model.BuilderFill{}, errors.Wrap(err, ecode.UpstreamErr, "parse builder fill px failed")
	}
	sz, err := strconv.ParseFloat(get("sz"), 64)
	if err != nil {
		return model.BuilderFill{}, errors.Wrap(err, ecode.UpstreamErr, "parse builder fill sz failed")
	}
	closedPnl, _ := strconv.ParseFloat(get("closed_pnl"), 64)
	builderFee, _ := strconv.ParseFloat(get("builder_fee"), 64)

	return model.BuilderFill{
		TimeMs:     ts.UnixMilli(),
		User:       strings.ToLower(get("user")),
		Coin:       get("coin"),
		IsBuy:      get("side") == "Bid" || get("side") == "B",
		Px:         px,
		Sz:         sz,
		ClosedPnl:  closedPnl,
		BuilderFee: builderFee,
	}, nil
}
