// Package pubsub 封装 media.created 事件所在 Pub/Sub 资源的组件初始化。
package pubsub

import (
	"context"
	"fmt"

	"github.com/bionicotaku/wedding-media-service/internal/conf"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
)

// NewSubscriber 根据配置构造 media.created 订阅。Messaging 未配置时返回 nil
// Subscriber，由上层决定降级行为（例如 Runner 禁用）。
func NewSubscriber(ctx context.Context, c *conf.Messaging, logger log.Logger) (gcpubsub.Subscriber, func(), error) {
	if c == nil || c.ProjectID == "" {
		return nil, func() {}, nil
	}
	if c.SubscriptionID == "" {
		return nil, func() {}, fmt.Errorf("pubsub: subscription_id is required")
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, gcpubsub.Config{
		ProjectID:        c.ProjectID,
		TopicID:          c.TopicID,
		SubscriptionID:   c.SubscriptionID,
		EmulatorEndpoint: c.EmulatorEndpoint,
	}, gcpubsub.Dependencies{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub: init component: %w", err)
	}
	return gcpubsub.ProvideSubscriber(component), cleanup, nil
}
