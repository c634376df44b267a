// Package webhook delivers queued interview configurations to the workflow
// engine. Deliveries are outbox rows written by the session service; the
// dispatcher owns every outgoing HTTP call, so webhook downtime is invisible
// to API callers.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mocklyai/mockly/internal/metrics"
	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
)

type Dispatcher struct {
	Deliveries pgrepo.DeliveryRepository
	Client     *http.Client
	Logger     *logrus.Logger
	Metrics    *metrics.Collector

	Workers  int
	Interval time.Duration
	MaxTries int
}

func (d *Dispatcher) Start(ctx context.Context) error {
	if d.Deliveries == nil {
		return errors.New("webhook.Dispatcher: Deliveries must be set")
	}
	if d.Client == nil {
		d.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.Workers <= 0 {
		d.Workers = 2
	}
	if d.Interval <= 0 {
		d.Interval = 5 * time.Second
	}
	if d.MaxTries <= 0 {
		d.MaxTries = 5
	}

	for i := 0; i < d.Workers; i++ {
		go d.run(ctx)
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context) {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Claimed rows are held past the tick interval so another worker's
		// claim in the same window cannot double-send them.
		due, err := d.Deliveries.ClaimDue(ctx, 10, 2*d.Interval+d.Client.Timeout)
		if err != nil {
			d.Logger.WithError(err).Error("failed to claim webhook deliveries")
			continue
		}
		for _, delivery := range due {
			d.attempt(ctx, delivery)
		}
	}
}

func (d *Dispatcher) attempt(ctx context.Context, delivery models.WebhookDelivery) {
	log := d.Logger.WithFields(logrus.Fields{
		"delivery_id": delivery.ID,
		"session_id":  delivery.SessionID,
		"attempt":     delivery.Attempts + 1,
	})

	start := time.Now()
	err := d.post(ctx, delivery.URL, delivery.Payload)
	took := time.Since(start)

	if err == nil {
		if d.Metrics != nil {
			d.Metrics.DeliveryAttempt("ok", took)
		}
		if err := d.Deliveries.MarkDelivered(ctx, delivery.ID); err != nil {
			log.WithError(err).Error("failed to mark delivery delivered")
		}
		log.Info("webhook delivered")
		return
	}

	if d.Metrics != nil {
		d.Metrics.DeliveryAttempt("error", took)
	}

	attempts := delivery.Attempts + 1
	if attempts >= d.MaxTries {
		if err2 := d.Deliveries.MarkFailed(ctx, delivery.ID, attempts, err.Error()); err2 != nil {
			log.WithError(err2).Error("failed to mark delivery failed")
		}
		log.WithError(err).Warn("webhook delivery abandoned")
		return
	}

	nextAt := time.Now().UTC().Add(Backoff(attempts))
	if err2 := d.Deliveries.MarkRetry(ctx, delivery.ID, attempts, nextAt, err.Error()); err2 != nil {
		log.WithError(err2).Error("failed to schedule delivery retry")
	}
	log.WithError(err).Warn("webhook delivery failed, will retry")
}

func (d *Dispatcher) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
