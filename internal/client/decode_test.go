package client

import (
	"errors"
	"testing"

	"github.com/autoreflex/autoreflex/internal/models"
)

func TestDecodePushEvent(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    models.PushEventType
		status  models.AgentStatus
		message string
		wantErr bool
	}{
		{
			name:   "status",
			frame:  `{"type":"status","data":"running"}`,
			want:   models.PushEventStatus,
			status: models.StatusRunning,
		},
		{
			name:   "unknown status kept verbatim",
			frame:  `{"type":"status","data":"paused"}`,
			want:   models.PushEventStatus,
			status: "paused",
		},
		{
			name:    "log",
			frame:   `{"type":"log","data":{"timestamp":"2026-02-10T14:30:00.123","level":"INFO","message":"[SUCCESS] ok","source":"claude-cli"}}`,
			want:    models.PushEventLog,
			message: "[SUCCESS] ok",
		},
		{name: "malformed json", frame: `{"type":"status",`, wantErr: true},
		{name: "not an object", frame: `["status","running"]`, wantErr: true},
		{name: "missing type", frame: `{"data":"running"}`, wantErr: true},
		{name: "unknown type", frame: `{"type":"ping","data":{}}`, wantErr: true},
		{name: "status not a string", frame: `{"type":"status","data":{"status":"running"}}`, wantErr: true},
		{name: "log not an object", frame: `{"type":"log","data":"hello"}`, wantErr: true},
		{name: "log missing message", frame: `{"type":"log","data":{"timestamp":"2026-02-10T14:30:00"}}`, wantErr: true},
		{name: "log bad timestamp", frame: `{"type":"log","data":{"timestamp":"later","message":"x"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePushEvent([]byte(tt.frame))
			if tt.wantErr {
				var pe *ProtocolError
				if !errors.As(err, &pe) {
					t.Errorf("DecodePushEvent(%s) error = %v, want *ProtocolError", tt.frame, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePushEvent(%s) error: %v", tt.frame, err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %q, want %q", got.Status, tt.status)
			}
			if tt.message != "" && (got.Log == nil || got.Log.Message != tt.message) {
				t.Errorf("Log = %+v, want message %q", got.Log, tt.message)
			}
		})
	}
}
