package kafka

import (
	"Touchstone/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

const clientID = "touchstone-canal"

func seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// newSaramaConfig canal 消费者配置，偏移量在每批处理完后手动提交
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID

	if sasl := kafkaCfg.Sasl; sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = sasl.Username
		c.Net.SASL.Password = sasl.Password
	}

	cc := kafkaCfg.Consumer
	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest
	c.Consumer.Offsets.AutoCommit.Enable = false
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	c.Consumer.Group.Session.Timeout = seconds(cc.SessionTimeout, 10*time.Second)
	c.Consumer.Group.Heartbeat.Interval = seconds(cc.HeartbeatInterval, 3*time.Second)
	c.Consumer.Group.Rebalance.Timeout = seconds(cc.RebalanceTimeout, 60*time.Second)
	// 单条消息含重试，审核一次可能较慢
	c.Consumer.MaxProcessingTime = seconds(cc.MaxProcessingTime, 30*time.Second)

	return c
}
