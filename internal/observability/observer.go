// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"time"
)

// StandardObserver implements observability for all pipeline components.
// Metadata passed to it must never contain original (unmasked) span text.
type StandardObserver struct {
	level  Level
	writer io.Writer
}

type Level int

const (
	Off     Level = 0
	Metrics Level = 1
	Debug   Level = 2
)

// NewStandardObserver creates an observability component writing to writer.
func NewStandardObserver(level Level, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// StartTiming returns a function to complete timing for one operation.
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		o.LogOperation(OperationData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data as a JSON event in debug mode.
func (o *StandardObserver) LogOperation(data OperationData) {
	if o.level == Off || o.writer == nil {
		return
	}

	data.RequestID = "req-" + time.Now().Format("20060102-150405")

	if o.level == Debug {
		json.NewEncoder(o.writer).Encode(data)
	}
}

// OperationData is the common event shape for all components.
type OperationData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	SpanCount  int                    `json:"span_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
