package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
)

const (
	// NotificationRetention is how long notifications are kept.
	NotificationRetention = 180 * 24 * time.Hour
	// StaleUploadAge is the age after which an uploaded import file is
	// considered abandoned.
	StaleUploadAge = 24 * time.Hour

	nightlySpec = "0 0 0 * * *"
	hourlySpec  = "0 0 * * * *"
)

type NotificationPurger interface {
	Purge(ctx context.Context, cutoff time.Time) (notifications, states int64, err error)
}

// Scheduler runs the housekeeping jobs on a seconds-resolution cron.
type Scheduler struct {
	cron    *cron.Cron
	purger  NotificationPurger
	uploads objectstore.Store
	now     func() time.Time
}

// NewScheduler accepts a nil purger or store. The matching job is then
// skipped.
func NewScheduler(purger NotificationPurger, uploads objectstore.Store) *Scheduler {
	logger := cron.PrintfLogger(logging.Base().WithField("component", "cron"))
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		purger:  purger,
		uploads: uploads,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(nightlySpec, func() { _ = s.PurgeNotifications(context.Background()) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(hourlySpec, func() { _ = s.SweepUploads(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	logging.Base().WithField("jobs", len(s.cron.Entries())).Info("cron scheduler started")
	return nil
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce runs every job immediately and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return errors.Join(s.PurgeNotifications(ctx), s.SweepUploads(ctx))
}

func (s *Scheduler) PurgeNotifications(ctx context.Context) error {
	if s.purger == nil {
		return nil
	}
	log := logging.Op(ctx, "jobs.purge_notifications")
	started := s.now()
	cutoff := started.Add(-NotificationRetention)
	log.WithField("cutoff", cutoff.Format(time.RFC3339)).Info("job started")

	notifications, states, err := s.purger.Purge(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("job failed")
		return err
	}
	log.WithFields(logrus.Fields{
		"notifications": notifications,
		"states":        states,
		"ms":            s.now().Sub(started).Milliseconds(),
	}).Info("job finished")
	return nil
}

// SweepUploads deletes import files older than StaleUploadAge. A failed
// delete is logged and the sweep goes on.
func (s *Scheduler) SweepUploads(ctx context.Context) error {
	if s.uploads == nil {
		return nil
	}
	log := logging.Op(ctx, "jobs.sweep_uploads")
	started := s.now()
	log.Info("job started")

	objects, err := s.uploads.List(ctx, "")
	if err != nil {
		log.WithError(err).Error("job failed")
		return err
	}

	cutoff := started.Add(-StaleUploadAge)
	deleted, failed := 0, 0
	for _, o := range objects {
		if !o.LastModified.Before(cutoff) {
			continue
		}
		if err := s.uploads.Delete(ctx, o.Key); err != nil && !errors.Is(err, objectstore.ErrObjectNotFound) {
			failed++
			log.WithError(err).WithField("key", o.Key).Warn("delete failed")
			continue
		}
		deleted++
	}

	log.WithFields(logrus.Fields{
		"scanned": len(objects),
		"deleted": deleted,
		"failed":  failed,
		"ms":      s.now().Sub(started).Milliseconds(),
	}).Info("job finished")
	return nil
}
