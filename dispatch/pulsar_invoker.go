// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
	"go.uber.org/multierr"
)

// PulsarInvoker publishes the payload to the target topic.
// One producer is created lazily per topic and reused.
type PulsarInvoker struct {
	sync.Mutex
	client    pulsar.Client
	producers map[string]pulsar.Producer
	logger    log.Logger
}

func NewPulsarInvoker(cfg config.PulsarConfig, logger log.Logger) (*PulsarInvoker, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:              cfg.URL,
		OperationTimeout: cfg.OperationTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &PulsarInvoker{
		client:    client,
		producers: map[string]pulsar.Producer{},
		logger:    logger,
	}, nil
}

func (p *PulsarInvoker) Invoke(ctx context.Context, target string, payload engine.InvocationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	producer, err := p.producer(target)
	if err != nil {
		return err
	}
	msgId, err := producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     payload.ExportArn,
		Payload: body,
	})
	if err != nil {
		return err
	}
	p.logger.Debug("invocation published", tag.Target(target), tag.ID(msgId.String()))
	return nil
}

func (p *PulsarInvoker) producer(topic string) (pulsar.Producer, error) {
	p.Lock()
	defer p.Unlock()
	if producer, ok := p.producers[topic]; ok {
		return producer, nil
	}
	producer, err := p.client.CreateProducer(pulsar.ProducerOptions{Topic: topic})
	if err != nil {
		return nil, err
	}
	p.producers[topic] = producer
	return producer, nil
}

func (p *PulsarInvoker) Close() error {
	p.Lock()
	defer p.Unlock()
	var errs error
	for topic, producer := range p.producers {
		errs = multierr.Append(errs, producer.Flush())
		producer.Close()
		delete(p.producers, topic)
	}
	p.client.Close()
	return errs
}
