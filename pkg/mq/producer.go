package mq

import (
	"context"

	"builderboard/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// Kafka 生产者服务
// 定义接口，方便测试和替换
type ProducerService interface {
	Produce(ctx context.Context, key []byte, payload interface{}) error
	Close()
}

const TopicLeaderboard = "builderboard_leaderboard"

type kafkaProducer struct {
	leaderboardWriter *kafka.Writer // 排行榜计算完成事件
}

func NewKafkaProducer(brokerURL string) ProducerService {
	leaderboardWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokerURL),
		Topic:    TopicLeaderboard,
		Balancer: &kafka.LeastBytes{}, // 保证写入负载均衡
	}
	return &kafkaProducer{leaderboardWriter: leaderboardWriter}
}

// Produce 序列化为 JSON 并写入 Kafka
func (p *kafkaProducer) Produce(ctx context.Context, key []byte, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	// key 使用请求的 (builder, 窗口) 标识，相同窗口的数据进入同一个 Partition
	return p.leaderboardWriter.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (p *kafkaProducer) Close() {
	if err := p.leaderboardWriter.Close(); err != nil {
		logger.Errorf("Error closing leaderboard writer: %v", err)
	}
}

// NopProducer 未配置 broker 时使用，丢弃所有消息
type NopProducer struct{}

func (NopProducer) Produce(ctx context.Context, key []byte, payload interface{}) error {
	return nil
}

func (NopProducer) Close() {}
