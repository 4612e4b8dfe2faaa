package client

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/autoreflex/autoreflex/internal/models"
)

// maxFrameExcerpt bounds how much of a rejected frame is kept for logging.
const maxFrameExcerpt = 256

// DecodePushEvent parses one push channel frame. Malformed JSON, unknown
// types and payloads of the wrong shape all yield a *ProtocolError.
func DecodePushEvent(frame []byte) (models.PushEvent, error) {
	if !gjson.ValidBytes(frame) {
		return models.PushEvent{}, protocolErr("malformed JSON", frame, nil)
	}
	root := gjson.ParseBytes(frame)
	if !root.IsObject() {
		return models.PushEvent{}, protocolErr("frame is not an object", frame, nil)
	}

	typ := root.Get("type")
	if typ.Type != gjson.String {
		return models.PushEvent{}, protocolErr("missing type", frame, nil)
	}
	data := root.Get("data")

	switch models.PushEventType(typ.Str) {
	case models.PushEventLog:
		if !data.IsObject() {
			return models.PushEvent{}, protocolErr("log data is not an object", frame, nil)
		}
		if !data.Get("message").Exists() || !data.Get("timestamp").Exists() {
			return models.PushEvent{}, protocolErr("log data missing fields", frame, nil)
		}
		var entry models.LogEntry
		if err := json.Unmarshal([]byte(data.Raw), &entry); err != nil {
			return models.PushEvent{}, protocolErr("invalid log data", frame, err)
		}
		return models.NewLogEvent(entry), nil

	case models.PushEventStatus:
		if data.Type != gjson.String || data.Str == "" {
			return models.PushEvent{}, protocolErr("status data is not a string", frame, nil)
		}
		return models.NewStatusEvent(models.AgentStatus(data.Str)), nil
	}

	return models.PushEvent{}, protocolErr("unknown type "+typ.Str, frame, nil)
}

func protocolErr(reason string, frame []byte, err error) *ProtocolError {
	excerpt := string(frame)
	if len(excerpt) > maxFrameExcerpt {
		excerpt = excerpt[:maxFrameExcerpt] + "..."
	}
	return &ProtocolError{Reason: reason, Frame: excerpt, Err: err}
}
