package ws

import (
	"encoding/json"
	"time"
)

type PipelineProgressEvent struct {
	Type      string `json:"type"`
	Stage     string `json:"stage"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Timestamp string `json:"timestamp"`
}

// ProgressBroadcaster adapts the hub to the pipeline's progress interface.
type ProgressBroadcaster struct {
	hub *Hub
}

func NewProgressBroadcaster(hub *Hub) *ProgressBroadcaster {
	return &ProgressBroadcaster{hub: hub}
}

func (p *ProgressBroadcaster) Notify(stage string, processed, total int) {
	if p == nil || p.hub == nil {
		return
	}
	evt := PipelineProgressEvent{
		Type:      "pipeline_progress",
		Stage:     stage,
		Processed: processed,
		Total:     total,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	p.hub.Broadcast(b)
}
