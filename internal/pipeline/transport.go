// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/sieve/internal/config"
)

// Transport names.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// Transport is the publisher/subscriber pair carrying keyword submissions.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	name       string
	closers    []func() error
}

// NewTransport builds the transport selected by cfg.Transport.
//
// "channel" is an in-process Go channel pub/sub; submissions are lost on
// restart. "nats" uses core NATS with a queue group so several instances
// share the work; JetStream is not used because failed runs are never
// redelivered.
func NewTransport(cfg config.PipelineConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case "", TransportChannel:
		pubSub := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger)
		return &Transport{
			Publisher:  pubSub,
			Subscriber: pubSub,
			name:       TransportChannel,
			closers:    []func() error{pubSub.Close},
		}, nil

	case TransportNATS:
		return newNATSTransport(cfg, logger)

	default:
		return nil, fmt.Errorf("unknown pipeline transport %q", cfg.Transport)
	}
}

func newNATSTransport(cfg config.PipelineConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("sieve-keyword-pipeline"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	core := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   core,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 30 * time.Second
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.Timeout,
		CloseTimeout:     closeTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        core,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &Transport{
		Publisher:  pub,
		Subscriber: sub,
		name:       TransportNATS,
		closers:    []func() error{sub.Close, pub.Close},
	}, nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return t.name
}

// Close closes the subscriber and publisher.
func (t *Transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
