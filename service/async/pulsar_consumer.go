// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"encoding/json"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// pulsarConsumer feeds the invocations published by a PulsarInvoker to the service.
// A message is acked once its audit is terminal, and negatively acked for redelivery
// when the processor buffer is full.
type pulsarConsumer struct {
	cfg      config.PulsarConfig
	svc      Service
	consumer pulsar.Consumer
	client   pulsar.Client
	stopCh   chan struct{}
	logger   log.Logger
}

func newPulsarConsumer(cfg config.PulsarConfig, svc Service, logger log.Logger) *pulsarConsumer {
	return &pulsarConsumer{
		cfg:    cfg,
		svc:    svc,
		stopCh: make(chan struct{}),
		logger: logger.WithTags(tag.Channel(ChannelPulsar)),
	}
}

func (p *pulsarConsumer) Start() error {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:              p.cfg.URL,
		OperationTimeout: p.cfg.OperationTimeout,
	})
	if err != nil {
		return err
	}
	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            p.cfg.Topic,
		SubscriptionName: p.cfg.Subscription,
		Type:             pulsar.Shared,
	})
	if err != nil {
		client.Close()
		return err
	}
	p.client = client
	p.consumer = consumer
	// processing logic in a goroutine
	go p.processMessages()
	return nil
}

// StopReceiving stops handing messages to the service. Acks keep working until Close.
func (p *pulsarConsumer) StopReceiving() {
	close(p.stopCh)
}

func (p *pulsarConsumer) Close() {
	p.consumer.Close()
	p.client.Close()
}

func (p *pulsarConsumer) processMessages() {
	msgCh := p.consumer.Chan()
	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				p.logger.Info("message channel is closed")
				return
			}
			p.processMessage(msg)
		case <-p.stopCh:
			p.logger.Info("message processor is closed")
			return
		}
	}
}

func (p *pulsarConsumer) processMessage(msg pulsar.ConsumerMessage) {
	var payload engine.InvocationPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		// redelivery cannot fix a malformed message
		p.logger.Error("dropping malformed invocation",
			tag.Error(err), tag.ID(msg.ID().String()), tag.Value(string(msg.Payload())))
		p.ack(msg)
		return
	}

	_, accepted := p.svc.SubmitInvocation(payload, ChannelPulsar, func(engine.AuditOutcome) {
		p.ack(msg)
	})
	if !accepted {
		p.consumer.Nack(msg)
	}
}

func (p *pulsarConsumer) ack(msg pulsar.ConsumerMessage) {
	err := p.consumer.Ack(msg)
	if err != nil {
		p.logger.Error("failed to ack the message after processing",
			tag.Error(err),
			tag.ID(msg.ID().String()),
			tag.Key(msg.Key()))
	}
}
