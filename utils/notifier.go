package utils

import (
	"fmt"
	"learnify/services/enrollment"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// LogNotifier announces course completions on the process log.
type LogNotifier struct{}

func (LogNotifier) NotifyCompleted(enrolledAt, completedAt time.Time) error {
	log.Println("*************** Congratulations!! you have successfully completed the course ********************")
	log.Printf("******************* Time taken to complete the course: %s *******************", completedAt.Sub(enrolledAt))
	return nil
}

// WebhookNotifier posts course completions to a configured endpoint.
type WebhookNotifier struct {
	URL string
}

func (w WebhookNotifier) NotifyCompleted(enrolledAt, completedAt time.Time) error {
	if w.URL == "" {
		return nil
	}

	client := resty.New()
	client.SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"event":        "course.completed",
			"enrolled_at":  enrolledAt,
			"completed_at": completedAt,
			"duration":     completedAt.Sub(enrolledAt).String(),
		}).
		Post(w.URL)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("completion webhook returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// MultiNotifier fans a completion out to every notifier, best-effort each.
type MultiNotifier []enrollment.Notifier

func (m MultiNotifier) NotifyCompleted(enrolledAt, completedAt time.Time) error {
	for _, n := range m {
		if err := n.NotifyCompleted(enrolledAt, completedAt); err != nil {
			log.Printf("Completion notifier error: %v", err)
		}
	}
	return nil
}
