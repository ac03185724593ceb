package split

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestProtocolRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewProtocol(nil, &buf)

	ctBytes := []byte("test ciphertext data")
	err := writer.SendForward(MsgForwardInput, 1, ctBytes, 5, 1.234)
	if err != nil {
		t.Fatalf("SendForward failed: %v", err)
	}

	reader := NewProtocol(&buf, nil)
	payload, err := reader.ReceiveForward(MsgForwardInput)
	if err != nil {
		t.Fatalf("ReceiveForward failed: %v", err)
	}

	if payload.BatchID != 1 {
		t.Errorf("BatchID = %d, want 1", payload.BatchID)
	}
	if payload.Level != 5 {
		t.Errorf("Level = %d, want 5", payload.Level)
	}
	if payload.ScaleFloat != 1.234 {
		t.Errorf("ScaleFloat = %f, want 1.234", payload.ScaleFloat)
	}
	if !bytes.Equal(payload.Ciphertext, ctBytes) {
		t.Errorf("Ciphertext mismatch")
	}
}

func TestProtocolKeys(t *testing.T) {
	var buf bytes.Buffer
	writer := NewProtocol(nil, &buf)
	if err := writer.SendKeys(13, 1024, []byte("evk")); err != nil {
		t.Fatalf("SendKeys failed: %v", err)
	}

	reader := NewProtocol(&buf, nil)
	keys, err := reader.ReceiveKeys()
	if err != nil {
		t.Fatalf("ReceiveKeys failed: %v", err)
	}
	if keys.LogN != 13 || keys.Features != 1024 {
		t.Errorf("keys = %+v, want LogN 13 and 1024 features", keys)
	}
	if string(keys.EvaluationKeys) != "evk" {
		t.Errorf("EvaluationKeys mismatch")
	}
}

func TestProtocolDone(t *testing.T) {
	var buf bytes.Buffer
	writer := NewProtocol(nil, &buf)
	writer.SendDone()

	reader := NewProtocol(&buf, nil)
	_, err := reader.ReceiveForward(MsgForwardInput)
	if err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestProtocolError(t *testing.T) {
	var buf bytes.Buffer
	writer := NewProtocol(nil, &buf)
	writer.SendError(errors.New("boom"))

	reader := NewProtocol(&buf, nil)
	_, err := reader.ReceiveKeys()
	if err == nil || err.Error() != "remote error: boom" {
		t.Errorf("Expected remote error, got %v", err)
	}
}

func TestProtocolUnexpectedType(t *testing.T) {
	var buf bytes.Buffer
	writer := NewProtocol(nil, &buf)
	writer.SendForward(MsgForwardOutput, 0, nil, 0, 0)

	reader := NewProtocol(&buf, nil)
	if _, err := reader.ReceiveForward(MsgForwardInput); err == nil {
		t.Errorf("Expected error for mismatched message type")
	}
	if err := NewProtocol(&buf, nil).Send(&Message{Type: MsgDone}); err == nil {
		t.Errorf("Expected error sending on a read-only protocol")
	}
}
