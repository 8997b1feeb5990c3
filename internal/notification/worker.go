package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering overdue-loan alerts to
// every registered manager subscription.
type WorkerPool struct {
	size    int
	jobs    chan store.OverdueLoan
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	loc     *time.Location
}

// NewWorkerPool creates a new worker pool. loc decides how checkout times
// are rendered in the alert text.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, loc *time.Location) *WorkerPool {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan store.OverdueLoan, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		loc:     loc,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case loan := <-wp.jobs:
			log.Printf("Worker %d notifying about movement %d", id, loan.MovementID)
			wp.sendNotificationsForLoan(ctx, loan)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(loan store.OverdueLoan) {
	wp.jobs <- loan
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan store.OverdueLoan {
	return wp.jobs
}

// sendNotificationsForLoan pushes one overdue alert to every subscription.
func (wp *WorkerPool) sendNotificationsForLoan(ctx context.Context, loan store.OverdueLoan) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for movement %d: %v", loan.MovementID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	message := fmt.Sprintf("Notebook %s não foi devolvido desde %s (disciplina: %s)",
		loan.DeviceName,
		loan.CheckoutAt.In(wp.loc).Format("02/01/2006 15:04"),
		loan.Discipline,
	)

	log.Printf("Sending %d notifications for movement %d", len(subscriptions), loan.MovementID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
