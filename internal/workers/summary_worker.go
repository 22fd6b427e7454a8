// Package workers rebuilds cached weekly summaries off the request path.
// Journal writes enqueue {uid, weekId} on a redis stream; a consumer group
// regenerates the summary so the next read is a cache hit.
package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/models"
)

const (
	DefaultSummaryStream = "summary:refresh"
	DefaultSummaryGroup  = "summary-workers"
)

// Summarizer is the part of the summary service the pool drives.
type Summarizer interface {
	WeeklySummary(ctx context.Context, uid, weekID string) (models.WeeklySummary, error)
}

// SummaryQueue is the producer side of the refresh stream.
type SummaryQueue struct {
	Redis  *redis.Client
	Stream string
	MaxLen int64
}

func NewSummaryQueue(rdb *redis.Client) *SummaryQueue {
	return &SummaryQueue{Redis: rdb, Stream: DefaultSummaryStream, MaxLen: 10000}
}

func (q *SummaryQueue) Enqueue(ctx context.Context, uid, weekID string) error {
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: q.Stream,
		MaxLen: q.MaxLen,
		Approx: true,
		Values: map[string]any{
			"uid":         uid,
			"week_id":     weekID,
			"enqueued_at": strconv.FormatInt(time.Now().UnixMilli(), 10),
		},
	}).Err()
}

type SummaryWorkerPool struct {
	Redis      *redis.Client
	Summaries  Summarizer
	NumWorkers int

	Logger logrus.FieldLogger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *SummaryWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Summaries == nil {
		return errors.New("SummaryWorkerPool missing dependency: Redis/Summaries must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultSummaryStream
	}
	if p.Group == "" {
		p.Group = DefaultSummaryGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "$").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *SummaryWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("summary stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				_ = p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

var errBadRefreshMessage = errors.New("refresh message missing uid or week_id")

// handleMsg regenerates one week. Malformed messages are dropped.
func (p *SummaryWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) error {
	getStr := func(k string) string {
		s, _ := msg.Values[k].(string)
		return s
	}

	uid, weekID := getStr("uid"), getStr("week_id")
	log := p.Logger.WithFields(logrus.Fields{"redis_id": msg.ID, "uid": uid, "week_id": weekID})
	if uid == "" || weekID == "" {
		log.Warn("dropping malformed summary refresh")
		return errBadRefreshMessage
	}

	start := time.Now()
	sum, err := p.Summaries.WeeklySummary(ctx, uid, weekID)
	if err != nil {
		log.WithError(err).Error("summary refresh failed")
		return err
	}
	log.WithFields(logrus.Fields{
		"empty":      sum.IsEmpty(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("summary refreshed")
	return nil
}
