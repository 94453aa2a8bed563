package service

import (
	"context"
	"strings"
	"testing"

	"ai-research-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTitleFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "short query passes through",
			query: "what is docker?",
			want:  "what is docker?",
		},
		{
			name:  "whitespace collapses",
			query: "  what \n is \t docker?  ",
			want:  "what is docker?",
		},
		{
			name:  "long query truncates on a word boundary",
			query: "explain the difference between optimistic and pessimistic locking in relational databases",
			want:  "explain the difference between optimistic and pessimistic...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionTitleFromQuery(tt.query)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 63)
		})
	}
}

type recordingLogger struct {
	warns []string
	infos []string
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.infos = append(l.infos, message)
}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.warns = append(l.warns, message)
}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Sync() error                                                  { return nil }

func TestMonitorHandleEventSeverity(t *testing.T) {
	log := &recordingLogger{}
	monitor := &MonitorService{logger: log}

	ctx := context.Background()
	require.NoError(t, monitor.handleEvent(ctx, events.NewRequestRejected("conv-1", "empty input")))
	require.NoError(t, monitor.handleEvent(ctx, events.NewRequestCompleted("conv-1", 2, 140)))

	require.Len(t, log.warns, 1)
	assert.True(t, strings.Contains(log.warns[0], "rejected"))
	require.Len(t, log.infos, 1)
}
