// Package ingest 消费媒体创建事件，驱动视频镜像流水线的首次上传。
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EventTypeMediaCreated 是来宾上传面发布创建事件时携带的 event_type 属性值。
const EventTypeMediaCreated = "media.created"

// Event 表示从创建事件消息中解析出的关键信息。
type Event struct {
	MediaID     uuid.UUID
	ContentType string
}

type mediaCreatedMessage struct {
	MediaID     string `json:"media_id"`
	ContentType string `json:"content_type"`
}

type eventDecoder struct{}

func newDecoder() *eventDecoder {
	return &eventDecoder{}
}

// Decode 将 Pub/Sub 消息数据解析为 Event。
func (d *eventDecoder) Decode(data []byte) (*Event, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ingest: empty payload")
	}

	var msg mediaCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("ingest: decode media created payload: %w", err)
	}

	raw := strings.TrimSpace(msg.MediaID)
	if raw == "" {
		return nil, fmt.Errorf("ingest: missing media_id")
	}
	mediaID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("ingest: parse media_id %q: %w", raw, err)
	}

	return &Event{
		MediaID:     mediaID,
		ContentType: strings.TrimSpace(msg.ContentType),
	}, nil
}
