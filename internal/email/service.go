package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"gymflow/internal/logger"
	"gymflow/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

// Job is a queued notification. Delivery is fire-and-forget: the engine
// never waits on it and never fails an operation because of it.
type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient lets tests inject a redismock client.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{redis: client, from: fromEmail, fromName: fromName}
}

func (s *Service) Send(ctx context.Context, to, name, notifType, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Type:    notifType,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification to %s: %v", notifType, to, err)
		metrics.RecordEmail(notifType, "queue_error")
		return err
	}

	metrics.RecordEmail(notifType, "queued")
	logger.Infof("Notification queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification payload: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(job, err)
			metrics.RecordEmail(job.Type, "failed")
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Infof("Notification sent to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name, className string, startsAt time.Time) error {
	subject := "Booking Confirmed - " + className
	body := fmt.Sprintf(`Hi %s,

Your spot is booked!

Class: %s
Time: %s

See you at the gym!

- GymFlow Team`, name, className, startsAt.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, to, name, "booking_confirmation", subject, body)
}

func (s *Service) SendInvoiceCreated(ctx context.Context, to, name, planName string, amountCents int64, dueDate time.Time) error {
	subject := "Invoice for your " + planName + " membership"
	body := fmt.Sprintf(`Hi %s,

An invoice has been created for your %s membership.

Amount: %.2f
Due: %s

Pay it to activate or extend your membership.

- GymFlow Team`, name, planName, float64(amountCents)/100, dueDate.Format("Jan 2, 2006"))

	return s.Send(ctx, to, name, "invoice_created", subject, body)
}

func (s *Service) SendPaymentReceipt(ctx context.Context, to, name, planName string, amountCents int64, validUntil time.Time) error {
	subject := "Payment received - " + planName
	body := fmt.Sprintf(`Hi %s,

We received your payment of %.2f for %s.

Your membership is active until %s.

- GymFlow Team`, name, float64(amountCents)/100, planName, validUntil.Format("Jan 2, 2006"))

	return s.Send(ctx, to, name, "payment_receipt", subject, body)
}
