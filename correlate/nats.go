package correlate

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/nats-io/nats.go"
)

// NATSSource feeds a Bus from a NATS subject, for deployments where the
// target publishes its log stream to a broker instead of a direct socket.
// Payloads are decoded as {"message": ..., "actor": ...} JSON frames when
// possible, otherwise the raw bytes become the event message.
type NATSSource struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// ConnectNATS dials url, subscribes to subject, and pumps every delivery
// into bus until Close is called.
func ConnectNATS(url, subject string, bus *Bus) (*NATSSource, error) {
	conn, err := nats.Connect(url, nats.Name("go-scenario"))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "nats connect failed").
			WithTextCode("EVENT_SOURCE_CONNECT_FAILED")
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		bus.Publish(decodeEventFrame(msg.Data))
	})
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, errors.CategoryExternal, "nats subscribe failed").
			WithTextCode("EVENT_SOURCE_SUBSCRIBE_FAILED")
	}

	return &NATSSource{conn: conn, sub: sub}, nil
}

// Close drains the subscription and closes the connection.
func (s *NATSSource) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.sub != nil {
		err = s.sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	return err
}

func decodeEventFrame(data []byte) Event {
	var frame struct {
		Timestamp time.Time `json:"timestamp"`
		Message   string    `json:"message"`
		Actor     string    `json:"actor"`
	}
	if err := json.Unmarshal(data, &frame); err == nil && frame.Message != "" {
		return Event{Timestamp: frame.Timestamp, Message: frame.Message, Actor: frame.Actor}
	}
	return Event{Message: string(data)}
}
