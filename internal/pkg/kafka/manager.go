package kafka

import (
	"Touchstone/internal/api/config"
	"Touchstone/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
)

// TableHandler 处理一张或多张表的 binlog
type TableHandler interface {
	Tables() []string
	Handle(ctx context.Context, msg *CanalMessage) error
}

// CanalRouter 按表名把消息分发给对应 handler，同一张表可以有多个 handler
type CanalRouter struct {
	routes map[string][]TableHandler
}

func NewCanalRouter(handlers ...TableHandler) *CanalRouter {
	r := &CanalRouter{routes: make(map[string][]TableHandler)}
	for _, h := range handlers {
		for _, t := range h.Tables() {
			r.routes[t] = append(r.routes[t], h)
		}
	}
	return r
}

func (s *CanalRouter) Setup(sarama.ConsumerGroupSession) error {
	log.Info("canal consumer setup")
	return nil
}

func (s *CanalRouter) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("canal consumer cleanup")
	return nil
}

func (s *CanalRouter) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-canal consume claim", "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-canal process batch error", "err", err)
		return err
	}
	log.Info("topic-canal consume claim end")
	return nil
}

func (s *CanalRouter) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg)
	if err != nil {
		return err
	}
	return s.Dispatch(ctx, canalMsg)
}

// Dispatch 任一 handler 失败都会让整条消息重试，handler 需要可重入
func (s *CanalRouter) Dispatch(ctx context.Context, msg *CanalMessage) error {
	handlers, ok := s.routes[msg.Table]
	if !ok {
		return nil
	}
	ctx = logger.NewTraceContext(ctx, "canal-"+msg.Table)
	for _, h := range handlers {
		if err := h.Handle(ctx, msg); err != nil {
			return fmt.Errorf("handle %s %s: %w", msg.Table, msg.Type, err)
		}
	}
	return nil
}

// ConsumerManager 管理 canal 消费者
type ConsumerManager struct {
	consumer sarama.ConsumerGroup
	handler  sarama.ConsumerGroupHandler
	topic    string
}

func NewConsumerManager(cfg *config.Config, router *CanalRouter) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	consumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCanal.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		consumer: consumer,
		handler:  router,
		topic:    cfg.KafkaCanal.Topic,
	}, nil
}

// Start 阻塞直到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.consumer.Errors() {
			log.Error("canal consumer group error", "err", err)
		}
	}()

	go func() {
		log.Info("Canal consumer started", "topic", m.topic)
		for {
			if err := m.consumer.Consume(ctx, []string{m.topic}, m.handler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.consumer.Close(); err != nil {
		log.Error("Failed to close canal consumer", "err", err)
	}
	return nil
}
