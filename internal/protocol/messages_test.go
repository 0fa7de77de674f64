package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageSubmit(t *testing.T) {
	raw := []byte(`{"type":"client_submit","session_id":"s1","text":"hello","ts_ms":123}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	submit, ok := msg.(ClientSubmit)
	if !ok {
		t.Fatalf("message type = %T, want ClientSubmit", msg)
	}
	if submit.SessionID != "s1" || submit.Text != "hello" {
		t.Fatalf("unexpected submit: %+v", submit)
	}
}

func TestParseClientMessageControl(t *testing.T) {
	raw := []byte(`{"type":"client_control","session_id":"s1","action":"start_voice","ts_ms":456}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	control, ok := msg.(ClientControl)
	if !ok {
		t.Fatalf("message type = %T, want ClientControl", msg)
	}
	if control.Action != ActionStartVoice {
		t.Fatalf("Action = %q, want %q", control.Action, ActionStartVoice)
	}
}

func TestParseClientMessageDictationPartial(t *testing.T) {
	raw := []byte(`{"type":"dictation_partial","session_id":"s1","text":"I have been"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	partial, ok := msg.(DictationPartial)
	if !ok {
		t.Fatalf("message type = %T, want DictationPartial", msg)
	}
	if partial.Text != "I have been" {
		t.Fatalf("Text = %q", partial.Text)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsUnknownAction(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_control","session_id":"s1","action":"dance"}`))
	if err == nil {
		t.Fatalf("error = nil, want unknown action error")
	}
}

func TestParseClientMessageRejectsMissingSession(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_submit","text":"hi"}`))
	if err == nil {
		t.Fatalf("error = nil, want invalid client_submit")
	}
}
