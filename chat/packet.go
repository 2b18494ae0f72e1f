package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Engine.io packet types (first byte of every websocket text frame).
const (
	enginePacketOpen    = '0'
	enginePacketClose   = '1'
	enginePacketPing    = '2'
	enginePacketPong    = '3'
	enginePacketMessage = '4'
)

// Socket.io packet types, nested inside an engine.io message frame.
const (
	socketPacketConnect      = '0'
	socketPacketConnectError = '4'
	socketPacketEvent        = '2'
	socketPacketAck          = '3'
)

// packet is a decoded engine.io frame. socketType and ackID are only
// meaningful when engineType is enginePacketMessage; ackID is -1 when the
// frame carries no acknowledgment id.
type packet struct {
	engineType byte
	socketType byte
	ackID      int64
	payload    []byte
}

func parsePacket(data []byte) (packet, error) {
	if len(data) == 0 {
		return packet{}, fmt.Errorf("empty frame")
	}
	p := packet{engineType: data[0], ackID: -1}
	switch p.engineType {
	case enginePacketOpen, enginePacketClose, enginePacketPing, enginePacketPong:
		p.payload = data[1:]
		return p, nil
	case enginePacketMessage:
	default:
		return packet{}, fmt.Errorf("unknown engine.io packet type %q", p.engineType)
	}
	if len(data) < 2 {
		return packet{}, fmt.Errorf("truncated socket.io frame %q", data)
	}
	p.socketType = data[1]
	rest := data[2:]
	// An optional acknowledgment id precedes the JSON payload: 42<id>[...]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.ParseInt(string(rest[:digits]), 10, 64)
		if err != nil {
			return packet{}, fmt.Errorf("invalid ack id in frame %q: %w", data, err)
		}
		p.ackID = id
	}
	p.payload = rest[digits:]
	return p, nil
}

// encodeEvent builds an event frame 42["name",args...], with an optional
// acknowledgment id (ackID < 0 omits it).
func encodeEvent(ackID int64, name string, args ...any) ([]byte, error) {
	body := make([]any, 0, len(args)+1)
	body = append(body, name)
	body = append(body, args...)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	head := []byte{enginePacketMessage, socketPacketEvent}
	if ackID >= 0 {
		head = strconv.AppendInt(head, ackID, 10)
	}
	return append(head, payload...), nil
}

// encodeAck builds an acknowledgment reply 43<id>[args...]. A bare ack
// still carries an empty argument array, never null.
func encodeAck(ackID int64, args ...any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode ack %d: %w", ackID, err)
	}
	head := strconv.AppendInt([]byte{enginePacketMessage, socketPacketAck}, ackID, 10)
	return append(head, payload...), nil
}

// decodeEventArgs splits an event payload ["name",args...] into the event
// name and its raw arguments.
func decodeEventArgs(payload []byte) (string, []json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return "", nil, fmt.Errorf("decode event payload %q: %w", payload, err)
	}
	if len(elems) == 0 {
		return "", nil, fmt.Errorf("event payload %q has no name", payload)
	}
	var name string
	if err := json.Unmarshal(elems[0], &name); err != nil {
		return "", nil, fmt.Errorf("decode event name: %w", err)
	}
	return name, elems[1:], nil
}
