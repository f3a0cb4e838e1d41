package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskforge-lab/backend/internal/domain/notification/event"
	"github.com/taskforge-lab/backend/pkg/kafka"
	"github.com/taskforge-lab/backend/pkg/pubsub"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

// startSubscriber consumes notification events published by the api
// service. It is the hook point for fan-out delivery channels.
func (s *srv) startSubscriber(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()

	cfg := xcontext.Configs(s.ctx)
	var err error
	s.subscriber, err = kafka.NewSubscriber(
		"subscriber",
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.NotificationTopic},
		s.handleNotificationEvent,
	)
	if err != nil {
		panic(err)
	}

	s.subscriber.Subscribe(s.ctx)
	xcontext.Logger(s.ctx).Infof("Subscriber started on topic %s", cfg.Kafka.NotificationTopic)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.subscriber.Stop(s.ctx)
}

func (s *srv) handleNotificationEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var ev event.EventRequest
	if err := json.Unmarshal(pack.Msg, &ev); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot unmarshal notification event: %v", err)
		return
	}

	xcontext.Logger(s.ctx).Infof("Received %s event for user %s", ev.Op, ev.Metadata.To)
}
