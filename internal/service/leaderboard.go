package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"builderboard/internal/consts"
	"builderboard/internal/dao"
	"builderboard/internal/model"
	"builderboard/internal/pnl"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/logger"
	"builderboard/pkg/mq"
)

type LeaderboardService struct {
	pnlService  *PnlService
	dao         dao.CompetitorDao
	rc          *redis.Client
	producer    mq.ProducerService
	concurrency int
}

func NewLeaderboardService(pnlService *PnlService, competitorDao dao.CompetitorDao,
	rc *redis.Client, producer mq.ProducerService, concurrency int) *LeaderboardService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &LeaderboardService{
		pnlService:  pnlService,
		dao:         competitorDao,
		rc:          rc,
		producer:    producer,
		concurrency: concurrency,
	}
}

type LeaderboardRes struct {
	Metric   model.LeaderboardMetric          `json:"metric,omitempty"`
	Total    int64                            `json:"total"`
	List     []model.LeaderboardEntry         `json:"list,omitempty"`
	Combined []model.CombinedLeaderboardEntry `json:"combined,omitempty"`
}

// Leaderboard 多用户并发计算盈亏后排名
// 未指定用户集时取登记在库的参赛选手；任一用户计算失败整个请求失败，
// 静默丢人会让榜单看起来像是那个人被剔除了
func (s *LeaderboardService) Leaderboard(ctx context.Context, req *model.LeaderboardReq) (*LeaderboardRes, error) {
	users := req.Users
	if len(users) == 0 {
		competitors, err := s.dao.CompetitorListActive(ctx)
		if err != nil {
			return nil, errors.Wrap(err, ecode.Unknown, "load competitors failed")
		}
		for _, c := range competitors {
			users = append(users, c.Address)
		}
	}
	if len(users) == 0 {
		return &LeaderboardRes{Metric: req.Metric}, nil
	}
	metric := req.Metric
	if metric == "" {
		metric = model.MetricPnl
	}
	if !metric.Valid() {
		return nil, errors.WithCode(ecode.ValidateErr, "unsupported metric %s", metric)
	}

	rdsKey := s.cacheKey(req, users, metric)
	if s.rc != nil {
		bytes, err := s.rc.Get(ctx, rdsKey).Bytes()
		if err == nil {
			var res LeaderboardRes
			if err = json.Unmarshal(bytes, &res); err == nil {
				return &res, nil
			}
		} else if err != redis.Nil {
			logger.Errorf("LeaderboardService redis读取异常:%v", err.Error())
		}
	}

	results, err := s.computeAll(ctx, users, req)
	if err != nil {
		return nil, err
	}

	res := &LeaderboardRes{Metric: metric}
	if req.Combined {
		res.Metric = ""
		res.Combined = combinedRows(results, req.BuilderOnly)
		res.Total = int64(len(res.Combined))
	} else {
		res.List = pnl.Rank(results, metric, req.BuilderOnly)
		res.Total = int64(len(res.List))
	}

	if s.rc != nil {
		bytes, err := json.Marshal(res)
		if err == nil {
			if err = s.rc.Set(ctx, rdsKey, bytes, consts.RedisExrDefault).Err(); err != nil {
				logger.Errorf("LeaderboardService存储Cache失败:%v", err.Error())
			}
		}
	}
	s.publish(ctx, req, res)
	return res, nil
}

// computeAll 有界并发逐用户计算，任一子任务失败或取消会联动取消其余任务
func (s *LeaderboardService) computeAll(ctx context.Context, users []string, req *model.LeaderboardReq) ([]model.PnLResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	results := make([]model.PnLResult, len(users))
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			// 这里始终做全量聚合拿到真实污染标记，builderOnly 的剔除在排名层做整行剔除，
			// 按净化后的子集聚合会让所有人看起来都是 Clean
			r, err := s.pnlService.Pnl(gctx, &model.PnlReq{
				User:            strings.ToLower(user),
				Coin:            req.Coin,
				FromMs:          req.FromMs,
				ToMs:            req.ToMs,
				MaxStartCapital: req.MaxStartCapital,
			})
			if err != nil {
				return errors.Wrapf(err, errors.Code(err), "compute pnl for %s failed", user)
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// combinedRows 全指标行，按盈亏降序、地址升序
func combinedRows(results []model.PnLResult, builderOnly bool) []model.CombinedLeaderboardEntry {
	rows := make([]model.CombinedLeaderboardEntry, 0, len(results))
	for _, r := range results {
		if builderOnly && r.Taint != model.TaintClean {
			continue
		}
		row := model.CombinedLeaderboardEntry{
			User:       r.User,
			Pnl:        r.RealizedPnl,
			Volume:     r.Volume,
			TradeCount: r.TradeCount,
			Taint:      r.Taint,
		}
		if r.ReturnPct != nil {
			row.ReturnPct = *r.ReturnPct
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Pnl != rows[j].Pnl {
			return rows[i].Pnl > rows[j].Pnl
		}
		return rows[i].User < rows[j].User
	})
	return rows
}

// publish 榜单结果投递到消息队列供下游消费，失败只记日志
func (s *LeaderboardService) publish(ctx context.Context, req *model.LeaderboardReq, res *LeaderboardRes) {
	if s.producer == nil {
		return
	}
	key := []byte(fmt.Sprintf("%d:%d:%s", req.FromMs, req.ToMs, req.Metric))
	if err := s.producer.Produce(ctx, key, res); err != nil {
		logger.Errorf("LeaderboardService投递kafka失败:%v", err.Error())
	}
}

func (s *LeaderboardService) cacheKey(req *model.LeaderboardReq, users []string, metric model.LeaderboardMetric) string {
	maxCap := float64(0)
	if req.MaxStartCapital != nil {
		maxCap = *req.MaxStartCapital
	}
	return fmt.Sprintf("%s:%s:%s:%d:%d:%t:%t:%g:%s",
		consts.LeaderboardKey, metric, req.Coin, req.FromMs, req.ToMs,
		req.BuilderOnly, req.Combined, maxCap, strings.Join(users, ","))
}
