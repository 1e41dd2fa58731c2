package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"housecare-data/internal/config"
	"housecare-data/internal/domain"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// InspectionReport 点检上报消息
// 点检 App / 业者端通过 MQTT 上报部件点检结果，收到后更新部件并触发重算
type InspectionReport struct {
	TenantID       string `json:"tenant_id"`
	HouseID        string `json:"house_id"`
	ComponentID    string `json:"component_id"`
	ConditionScore *int   `json:"condition_score"`
	InspectedAt    string `json:"inspected_at"` // "2006-01-02"
}

// InspectionBroker 点检上报 MQTT 消费者
type InspectionBroker struct {
	client pahomqtt.Client
	cfg    *config.MQTTConfig
	comps  repository.ComponentsRepository
	health *service.HealthService
	logger *zap.Logger
}

// NewInspectionBroker 创建点检上报消费者
func NewInspectionBroker(
	cfg *config.MQTTConfig,
	comps repository.ComponentsRepository,
	health *service.HealthService,
	logger *zap.Logger,
) *InspectionBroker {
	b := &InspectionBroker{
		cfg:    cfg,
		comps:  comps,
		health: health,
		logger: logger,
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			logger.Info("MQTT connected, subscribing", zap.String("topic", cfg.Topic))
			if token := c.Subscribe(cfg.Topic, cfg.QoS, b.onMessage); token.Wait() && token.Error() != nil {
				logger.Error("MQTT subscribe failed", zap.Error(token.Error()))
			}
		}).
		SetConnectionLostHandler(func(c pahomqtt.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err))
		})

	b.client = pahomqtt.NewClient(opts)
	return b
}

// Start 连接 broker（订阅在 OnConnect 回调里完成，重连后自动恢复）
func (b *InspectionBroker) Start() error {
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Stop 断开连接
func (b *InspectionBroker) Stop() {
	b.client.Disconnect(250)
	b.logger.Info("MQTT broker disconnected")
}

func (b *InspectionBroker) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	if err := b.HandleMessage(msg.Topic(), msg.Payload()); err != nil {
		b.logger.Error("Failed to process inspection report",
			zap.String("topic", msg.Topic()),
			zap.Error(err),
		)
	}
}

// HandleMessage 处理一条点检上报
// 单独拆出来便于不起 broker 直接测试
func (b *InspectionBroker) HandleMessage(topic string, payload []byte) error {
	var report InspectionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return fmt.Errorf("failed to unmarshal inspection report: %w", err)
	}

	if report.TenantID == "" || report.HouseID == "" || report.ComponentID == "" {
		return fmt.Errorf("inspection report missing ids: tenant=%q house=%q component=%q",
			report.TenantID, report.HouseID, report.ComponentID)
	}
	if report.ConditionScore != nil && (*report.ConditionScore < 0 || *report.ConditionScore > 100) {
		return fmt.Errorf("condition_score out of range: %d", *report.ConditionScore)
	}

	inspectedAt := time.Now()
	if report.InspectedAt != "" {
		t, err := time.Parse("2006-01-02", report.InspectedAt)
		if err != nil {
			return fmt.Errorf("invalid inspected_at: %q", report.InspectedAt)
		}
		inspectedAt = t
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	update := &domain.Component{
		ConditionScore:     report.ConditionScore,
		LastInspectionDate: &inspectedAt,
	}
	if err := b.comps.UpdateComponent(ctx, report.TenantID, report.ComponentID, update); err != nil {
		return fmt.Errorf("failed to apply inspection report: %w", err)
	}

	if _, err := b.health.RecomputeHouse(ctx, report.TenantID, report.HouseID); err != nil {
		return fmt.Errorf("failed to recompute after inspection: %w", err)
	}

	b.logger.Info("Inspection report applied",
		zap.String("tenant_id", report.TenantID),
		zap.String("house_id", report.HouseID),
		zap.String("component_id", report.ComponentID),
	)
	return nil
}
