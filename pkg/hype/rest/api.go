package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"builderboard/pkg/hype/types"
	"builderboard/pkg/logger"

	"github.com/goccy/go-json"
)

const (
	// 假设 Hyperliquid API 单次最多返回 2000 条记录
	APIRecordLimit = 2000
	// 限制最大循环次数，防止极端情况下的无限循环
	maxPullLoops = 50

	backoffBase = 2 * time.Second
)

// ErrNotFound 上游明确返回 403/404，表示该资源未发布
var ErrNotFound = fmt.Errorf("hyperliquid: resource not found")

type HyperliquidRestClient struct {
	url        string
	statsURL   string
	httpClient *http.Client
	maxRetries int
}

func NewHyperliquidRestClient(rawUrl string, statsUrl string, timeout time.Duration, maxRetries int) (*HyperliquidRestClient, error) {
	urls := []string{rawUrl, statsUrl}
	parsedUrls := make([]string, len(urls))

	for i, inputUrl := range urls {
		parsedUrl, err := url.Parse(inputUrl)
		if err != nil || parsedUrl.Scheme == "" || parsedUrl.Host == "" {
			return nil, fmt.Errorf("invalid URL: %s", inputUrl)
		}
		if len(parsedUrl.Path) > 0 && parsedUrl.Path[len(parsedUrl.Path)-1:] == "/" {
			parsedUrl.Path = parsedUrl.Path[:len(parsedUrl.Path)-1]
		}
		parsedUrls[i] = parsedUrl.String()
	}

	if maxRetries <= 0 {
		maxRetries = 5
	}

	return &HyperliquidRestClient{
		url:        parsedUrls[0],
		statsURL:   parsedUrls[1],
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

// doRequestWithContext 发起 /info POST 请求，429 和网络错误按指数退避重试
func (rest *HyperliquidRestClient) doRequestWithContext(ctx context.Context, endpoint string, requestType string, additionalParams map[string]interface{}, result interface{}) error {
	reqBody := map[string]interface{}{"type": requestType}
	for key, value := range additionalParams {
		reqBody[key] = value
	}
	reqBodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < rest.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// 请求体每次循环重建，部分 HTTP 客户端读完 Body 后无法重用 io.Reader
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rest.url+endpoint, bytes.NewBuffer(reqBodyJSON))
		if err != nil {
			return fmt.Errorf("failed to create new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := rest.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request (network error): %w", err)
		} else {
			if resp.StatusCode == http.StatusOK {
				byteData, err := io.ReadAll(resp.Body)
				resp.Body.Close()
				if err != nil {
					return fmt.Errorf("failed to read response body: %w", err)
				}
				if err := json.Unmarshal(byteData, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusTooManyRequests {
				// 其他非 OK 错误通常不可恢复
				return fmt.Errorf("received non-OK HTTP status: %s", resp.Status)
			}
			lastErr = fmt.Errorf("received 429 Too Many Requests on attempt %d", attempt+1)
		}

		if attempt == rest.maxRetries-1 {
			break
		}
		// 指数退避： backoffBase * 2^attempt
		waitTime := backoffBase * time.Duration(1<<attempt)
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("API failed after %d retries. Last error: %w", rest.maxRetries, lastErr)
}

// UserFillsByWindow 在 [startTime, endTime) 时间窗口内递归拉取所有成交记录，分批拉取
func (rest *HyperliquidRestClient) UserFillsByWindow(
	ctx context.Context,
	userAddress string,
	startTime int64, // 窗口起始时间戳 (毫秒)
	endTime int64, // 窗口结束时间戳 (毫秒)
) ([]*types.UserFillOrder, error) {
	if startTime >= endTime {
		return nil, nil
	}

	var allFills []*types.UserFillOrder
	pullEnd := endTime
	loops := 0
	requestCount := 0
	defer func() {
		logger.Debugf("HyperliquidRestClient UserFillsByWindow(%d-%d) request count: %d", startTime, endTime, requestCount)
	}()

	for pullEnd > startTime && loops < maxPullLoops {
		requestCount++
		loops++

		params := map[string]interface{}{
			"user": userAddress,
			// 查询范围：[startTime, pullEnd)
			"startTime":       startTime,
			"endTime":         pullEnd,
			"aggregateByTime": true,
		}

		var fills []*types.UserFillOrder
		if err := rest.doRequestWithContext(ctx, "/info", "userFillsByTime", params, &fills); err != nil {
			return nil, err
		}

		if len(fills) == 0 {
			break
		}

		// 过滤掉时间戳早于窗口起点的记录
		allFills = append(allFills, filterFillsAfter(fills, startTime-1)...)

		if len(fills) >= APIRecordLimit {
			// 返回被截断，把下次查询的终点退到本批最旧记录之前 1ms，避免边界死循环
			oldest := fills[len(fills)-1].Time
			for _, f := range fills {
				if f.Time < oldest {
					oldest = f.Time
				}
			}
			newPullEnd := oldest - 1
			if newPullEnd <= startTime {
				pullEnd = startTime
			} else {
				pullEnd = newPullEnd
			}
		} else {
			// 返回没有达到上限，[startTime, pullEnd) 已经完整
			pullEnd = startTime
		}
	}

	sortFills(allFills)
	return allFills, nil
}

// AccountValue 获取账户当前权益（marginSummary.accountValue）
func (rest *HyperliquidRestClient) AccountValue(ctx context.Context, userAddress string) (float64, error) {
	summary, err := rest.PerpetualsAccountSummary(ctx, userAddress)
	if err != nil {
		return 0, err
	}
	return parseStringToFloat(summary.MarginSummary.AccountValue), nil
}

// PerpetualsAccountSummary 获取账号信息: 主要包含永续合约持仓、盈亏、保证金
func (rest *HyperliquidRestClient) PerpetualsAccountSummary(ctx context.Context, user string) (types.MarginData, error) {
	var marginData types.MarginData
	params := map[string]interface{}{"user": user}
	if err := rest.doRequestWithContext(ctx, "/info", "clearinghouseState", params, &marginData); err != nil {
		return types.MarginData{}, err
	}
	return marginData, nil
}

// AccountValueAt 查询 timeMs 时刻的账户权益，portfolio 历史未覆盖该时刻时返回 ok=false
func (rest *HyperliquidRestClient) AccountValueAt(ctx context.Context, userAddress string, timeMs int64) (float64, bool, error) {
	history, err := rest.accountValueHistory(ctx, userAddress)
	if err != nil {
		return 0, false, err
	}

	// 取 timeMs 之前（含）最近的一个采样点
	target := time.UnixMilli(timeMs)
	found := false
	var value float64
	for _, p := range history {
		if p.Time.After(target) {
			break
		}
		value = p.Value
		found = true
	}
	return value, found, nil
}

// accountValueHistory 拉取 portfolio 接口并合并各周期的 accountValueHistory，按时间升序
func (rest *HyperliquidRestClient) accountValueHistory(ctx context.Context, userAddress string) ([]types.DataPoint, error) {
	var raw [][]json.RawMessage
	params := map[string]interface{}{"user": userAddress}
	if err := rest.doRequestWithContext(ctx, "/info", "portfolio", params, &raw); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	var points []types.DataPoint

	for _, entry := range raw {
		if len(entry) != 2 {
			continue
		}
		var period string
		if err := json.Unmarshal(entry[0], &period); err != nil {
			continue
		}
		var detail struct {
			AccountValueHistory [][]interface{} `json:"accountValueHistory"`
		}
		if err := json.Unmarshal(entry[1], &detail); err != nil {
			continue
		}
		for _, arr := range detail.AccountValueHistory {
			if len(arr) != 2 {
				continue
			}
			ts, ok1 := toInt64(arr[0])
			val, ok2 := toFloat64(arr[1])
			if !ok1 || !ok2 {
				continue
			}
			if _, dup := seen[ts]; dup {
				continue
			}
			seen[ts] = struct{}{}
			points = append(points, types.DataPoint{Time: time.UnixMilli(ts), Value: val})
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// BuilderFillsCSV 下载指定 builder 在指定日期(YYYYMMDD)的成交 CSV（lz4 压缩），返回压缩原文
// 未发布的日期返回 ErrNotFound
func (rest *HyperliquidRestClient) BuilderFillsCSV(ctx context.Context, builderAddress string, date string) ([]byte, error) {
	csvURL := fmt.Sprintf("%s/builder_fills/%s/%s.csv.lz4", rest.statsURL, builderAddress, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := rest.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch builder csv: %v", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// 对返回的成交记录排序，时间相同用 Tid 作为次要排序键保证稳定
func sortFills(fills []*types.UserFillOrder) {
	if len(fills) == 0 {
		return
	}
	sort.Slice(fills, func(i, j int) bool {
		if fills[i].Time == fills[j].Time {
			return fills[i].Tid < fills[j].Tid
		}
		return fills[i].Time < fills[j].Time
	})
}

// 过滤掉时间戳小于或等于 since 的记录
func filterFillsAfter(fills []*types.UserFillOrder, since int64) []*types.UserFillOrder {
	if len(fills) == 0 {
		return nil
	}
	var filtered []*types.UserFillOrder
	for _, f := range fills {
		if f.Time > since {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
