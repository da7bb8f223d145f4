// internal/services/command.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/metrics"
	"github.com/javajoker/license-console/internal/models"
)

// NewCommandID returns a fresh idempotency key. Every attempt gets its own,
// so a manual retry is a new command as far as the ledger is concerned.
func NewCommandID() string {
	return uuid.NewString()
}

// commandRunner owns the steps shared by every mutating command: command id,
// failure classification, metrics, refetch on success and notification.
type commandRunner struct {
	notifier     Notifier
	lang         string
	newCommandID func() string
}

func newCommandRunner(notifier Notifier, lang string) *commandRunner {
	if lang == "" {
		lang = "en"
	}
	return &commandRunner{
		notifier:     notifier,
		lang:         lang,
		newCommandID: NewCommandID,
	}
}

type command[T any] struct {
	operation  string
	actionKey  string
	contractID string
	call       func(ctx context.Context, commandID string) (T, error)
	classify   func(lang, action string, err error) *Failure
	// refetch runs only after the ledger accepted the command.
	refetch func(ctx context.Context)
	success func(value T) string
}

func execute[T any](ctx context.Context, r *commandRunner, cmd command[T]) Result[T] {
	commandID := r.newCommandID()
	action := i18n.T(r.lang, cmd.actionKey)
	log := logrus.WithFields(logrus.Fields{
		"operation":   cmd.operation,
		"command_id":  commandID,
		"contract_id": cmd.contractID,
	})

	start := time.Now()
	value, err := cmd.call(ctx, commandID)
	if err != nil {
		classify := cmd.classify
		if classify == nil {
			classify = Classify
		}
		failure := classify(r.lang, action, err)
		metrics.RecordCommand(cmd.operation, string(failure.Kind), time.Since(start))
		log.WithError(err).WithField("kind", failure.Kind).Warn("Ledger command failed")
		r.notifyFailure(ctx, cmd.operation, commandID, cmd.contractID, failure)
		return fail[T](failure)
	}

	metrics.RecordCommand(cmd.operation, "success", time.Since(start))
	log.WithField("duration", time.Since(start).Milliseconds()).Debug("Ledger command succeeded")

	if cmd.refetch != nil {
		cmd.refetch(ctx)
	}

	r.notify(ctx, &models.Notification{
		Level:      models.NotificationLevelSuccess,
		Action:     cmd.operation,
		Message:    cmd.success(value),
		CommandID:  commandID,
		ContractID: cmd.contractID,
	})
	return succeed(value)
}

// reject reports a failure found before any remote call was made.
func reject[T any](ctx context.Context, r *commandRunner, operation, contractID string, failure *Failure) Result[T] {
	metrics.RecordCommand(operation, string(failure.Kind), 0)
	r.notifyFailure(ctx, operation, "", contractID, failure)
	return fail[T](failure)
}

func (r *commandRunner) action(key string) string {
	return i18n.T(r.lang, key)
}

func (r *commandRunner) notifyFailure(ctx context.Context, operation, commandID, contractID string, failure *Failure) {
	r.notify(ctx, &models.Notification{
		Level:      models.NotificationLevelError,
		Action:     operation,
		Message:    failure.Message,
		ErrorKind:  string(failure.Kind),
		Status:     failure.Status,
		CommandID:  commandID,
		ContractID: contractID,
	})
}

func (r *commandRunner) notify(ctx context.Context, n *models.Notification) {
	if r.notifier != nil {
		r.notifier.Notify(ctx, n)
	}
}

// fetchTracker reports a collection's fetch failures once per outage.
type fetchTracker struct {
	collection string
	mu         sync.Mutex
	failing    bool
}

func (t *fetchTracker) observe(ctx context.Context, r *commandRunner, actionKey string, err error) *Failure {
	metrics.RecordFetch(t.collection, err)

	t.mu.Lock()
	wasFailing := t.failing
	t.failing = err != nil
	t.mu.Unlock()

	if err == nil {
		if wasFailing {
			logrus.WithField("collection", t.collection).Info("Fetch recovered")
		}
		return nil
	}

	failure := Classify(r.lang, r.action(actionKey), err)
	logrus.WithError(err).WithFields(logrus.Fields{
		"collection": t.collection,
		"kind":       failure.Kind,
	}).Warn("Fetch failed, keeping previous projection")

	if !wasFailing {
		r.notifyFailure(ctx, "fetch_"+t.collection, "", "", failure)
	}
	return failure
}
