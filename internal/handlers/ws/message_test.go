package ws

import (
	"testing"
)

func TestDeserializeKnownCommands(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{
			name:     "typing start",
			raw:      `{"type":"typing_start","payload":{"chat_id":10}}`,
			wantType: "typing_start",
		},
		{
			name:     "typing stop",
			raw:      `{"type":"typing_stop","payload":{"chat_id":10}}`,
			wantType: "typing_stop",
		},
		{
			name:     "subscribe",
			raw:      `{"type":"subscribe","payload":{"chat_id":3}}`,
			wantType: "subscribe",
		},
		{
			name:     "ping without payload",
			raw:      `{"type":"ping"}`,
			wantType: "ping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Deserialize([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if msg.GetType() != tt.wantType {
				t.Errorf("GetType() = %q, want %q", msg.GetType(), tt.wantType)
			}
		})
	}
}

func TestDeserializePayloadFields(t *testing.T) {
	msg, err := Deserialize([]byte(`{"type":"typing_start","payload":{"chat_id":42}}`))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	start, ok := msg.(*MessageTypingStart)
	if !ok {
		t.Fatalf("got %T, want *MessageTypingStart", msg)
	}
	if start.ChatID != 42 {
		t.Errorf("ChatID = %d, want 42", start.ChatID)
	}
}

func TestDeserializeUnknownType(t *testing.T) {
	if _, err := Deserialize([]byte(`{"type":"drop_tables","payload":{}}`)); err == nil {
		t.Error("unknown command type accepted")
	}
}

func TestDeserializeMalformedJSON(t *testing.T) {
	if _, err := Deserialize([]byte(`{not json`)); err == nil {
		t.Error("malformed frame accepted")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	raw, err := Serialize(&MessageTypingStart{ChatID: 7})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	msg, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if start, ok := msg.(*MessageTypingStart); !ok || start.ChatID != 7 {
		t.Errorf("round trip = %+v", msg)
	}
}
