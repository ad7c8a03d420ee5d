package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// NATS publishes items to a JetStream subject. The item id doubles as the
// message id so a retried publish is deduplicated by the stream.
type NATS struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

func OpenNATS(ctx context.Context, cfg config.NATSConfig, log *zap.Logger) (*NATS, error) {
	subject := strings.TrimSpace(cfg.Subject)
	if subject == "" {
		return nil, errors.New("nats sink: missing subject")
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("companion"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats sink: connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats sink: jetstream: %w", err)
	}

	if stream := strings.TrimSpace(cfg.Stream); stream != "" {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
			Name:     stream,
			Subjects: []string{subject},
			Storage:  jetstream.FileStorage,
		})
		if err != nil {
			// The stream may be managed elsewhere with a wider subject filter.
			log.Warn("ensure stream failed", zap.String("stream", stream), zap.Error(err))
		}
	}
	return &NATS{nc: nc, js: js, subject: subject}, nil
}

func itemMsg(subject string, it model.Item) (*nats.Msg, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(jetstream.MsgIDHeader, it.ID)
	msg.Header.Set("Companion-Kind", string(it.Kind))
	return msg, nil
}

func (n *NATS) Submit(ctx context.Context, it model.Item) error {
	msg, err := itemMsg(n.subject, it)
	if err != nil {
		return err
	}
	if _, err := n.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats sink: publish to %s: %w", n.subject, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n.nc != nil {
		n.nc.Close()
	}
	return nil
}
