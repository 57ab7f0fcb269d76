// Package notifier hands reservation status changes to the notification
// pipeline. Dispatch is fire-and-forget: failures are logged and swallowed,
// never surfaced to the booking path.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/repository"
)

// Dispatcher delivers a status-change event to whatever is listening.
type Dispatcher interface {
	DispatchStatusChange(ctx context.Context, event model.StatusChangeEvent) error
}

// SFNDispatcher starts the notification state machine for each event. The
// state machine owns the actual delivery (push, email); the booking engine
// only reports what happened.
type SFNDispatcher struct {
	client          *sfn.Client
	stateMachineARN string
}

func NewSFNDispatcher(client *sfn.Client, stateMachineARN string) *SFNDispatcher {
	return &SFNDispatcher{
		client:          client,
		stateMachineARN: stateMachineARN,
	}
}

// DispatchStatusChange starts one execution carrying the event as input.
// Skipped when no client is configured (local environments).
func (d *SFNDispatcher) DispatchStatusChange(ctx context.Context, event model.StatusChangeEvent) error {
	if d.client == nil || d.stateMachineARN == "" {
		log.Printf("No Step Functions client configured, skipping notification for reservation %s", event.ReservationID)
		return nil
	}

	input, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status change event: %w", err)
	}

	_, err = d.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(d.stateMachineARN),
		Input:           aws.String(string(input)),
	})
	if err != nil {
		return fmt.Errorf("failed to start notification execution: %w", err)
	}
	return nil
}

// RecordDispatcher writes an in-app notification record per event.
type RecordDispatcher struct {
	notificationRepo repository.NotificationRepository
}

func NewRecordDispatcher(notificationRepo repository.NotificationRepository) *RecordDispatcher {
	return &RecordDispatcher{notificationRepo: notificationRepo}
}

// DispatchStatusChange persists the event as a notification record.
func (d *RecordDispatcher) DispatchStatusChange(ctx context.Context, event model.StatusChangeEvent) error {
	record := event.ToNotificationRecord()
	if err := d.notificationRepo.Create(ctx, &record); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// Multi fans one event out to several dispatchers. Each dispatcher gets its
// chance even when an earlier one fails; the first error is returned for
// logging.
type Multi []Dispatcher

func (m Multi) DispatchStatusChange(ctx context.Context, event model.StatusChangeEvent) error {
	var firstErr error
	for _, d := range m {
		if err := d.DispatchStatusChange(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Nop discards every event. Used in tests and when notifications are off.
type Nop struct{}

func (Nop) DispatchStatusChange(context.Context, model.StatusChangeEvent) error { return nil }
