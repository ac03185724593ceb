// Package split scores trajectories with the discriminator split between a
// client, which runs the convolutional body on its own data, and a server,
// which evaluates the dense head on CKKS-encrypted features.
package split

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	// Register types for gob encoding
	gob.Register(KeysPayload{})
	gob.Register(ForwardPayload{})
}

// MessageType defines message types for the scoring protocol
type MessageType int

const (
	MsgKeys MessageType = iota
	MsgForwardInput
	MsgForwardOutput
	MsgDone
	MsgError
)

// Message represents a message in the scoring protocol
type Message struct {
	Type    MessageType
	Payload interface{}
}

// KeysPayload carries what the server needs to evaluate: the ring degree
// and the serialized evaluation keys. No secret material is included.
type KeysPayload struct {
	LogN           int
	Features       int
	EvaluationKeys []byte
}

// ForwardPayload contains an encrypted feature vector or score
type ForwardPayload struct {
	BatchID    int
	Ciphertext []byte // serialized ciphertext
	Level      int
	ScaleFloat float64
}

// Protocol handles scoring communication over any byte stream
type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewProtocol creates a new protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	p := &Protocol{}
	if w != nil {
		p.encoder = gob.NewEncoder(w)
	}
	if r != nil {
		p.decoder = gob.NewDecoder(r)
	}
	return p
}

// Send sends a message
func (p *Protocol) Send(msg *Message) error {
	if p.encoder == nil {
		return fmt.Errorf("protocol has no writer")
	}
	return p.encoder.Encode(msg)
}

// Receive receives a message
func (p *Protocol) Receive() (*Message, error) {
	if p.decoder == nil {
		return nil, fmt.Errorf("protocol has no reader")
	}
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendKeys sends the evaluation keys that open a session
func (p *Protocol) SendKeys(logN, features int, evk []byte) error {
	return p.Send(&Message{
		Type: MsgKeys,
		Payload: KeysPayload{
			LogN:           logN,
			Features:       features,
			EvaluationKeys: evk,
		},
	})
}

// SendForward sends a forward pass ciphertext; msgType is MsgForwardInput
// from the client and MsgForwardOutput from the server.
func (p *Protocol) SendForward(msgType MessageType, batchID int, ctBytes []byte, level int, scale float64) error {
	return p.Send(&Message{
		Type: msgType,
		Payload: ForwardPayload{
			BatchID:    batchID,
			Ciphertext: ctBytes,
			Level:      level,
			ScaleFloat: scale,
		},
	})
}

// SendDone signals completion
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

// SendError sends an error message
func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{
		Type:    MsgError,
		Payload: err.Error(),
	})
}

// receiveChecked reads one message and turns MsgError into an error and
// MsgDone into io.EOF.
func (p *Protocol) receiveChecked(want MessageType) (*Message, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	if msg.Type == MsgError {
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	}
	if msg.Type == MsgDone {
		return nil, io.EOF
	}
	if msg.Type != want {
		return nil, fmt.Errorf("expected message %d, got %d", want, msg.Type)
	}
	return msg, nil
}

// ReceiveKeys receives the session-opening keys
func (p *Protocol) ReceiveKeys() (*KeysPayload, error) {
	msg, err := p.receiveChecked(MsgKeys)
	if err != nil {
		return nil, err
	}
	payload, ok := msg.Payload.(KeysPayload)
	if !ok {
		return nil, fmt.Errorf("invalid keys payload type")
	}
	return &payload, nil
}

// ReceiveForward receives a forward pass payload of the given type
func (p *Protocol) ReceiveForward(msgType MessageType) (*ForwardPayload, error) {
	msg, err := p.receiveChecked(msgType)
	if err != nil {
		return nil, err
	}
	payload, ok := msg.Payload.(ForwardPayload)
	if !ok {
		return nil, fmt.Errorf("invalid forward payload type")
	}
	return &payload, nil
}
