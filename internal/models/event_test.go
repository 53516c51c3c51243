package models

import (
	"testing"
	"time"
)

func TestValidateWindow(t *testing.T) {
	now := time.Now()

	event := &Event{
		Title:     "CS Study Group",
		Category:  "Study",
		StartTime: now.Add(1 * time.Hour),
		EndTime:   now.Add(3 * time.Hour),
	}
	if err := event.ValidateWindow(); err != nil {
		t.Fatalf("expected valid window, got %v", err)
	}

	event.EndTime = event.StartTime
	if err := event.ValidateWindow(); err == nil {
		t.Error("expected error when end_time equals start_time")
	}

	event.EndTime = event.StartTime.Add(-time.Minute)
	if err := event.ValidateWindow(); err == nil {
		t.Error("expected error when end_time precedes start_time")
	}

	event.StartTime = time.Time{}
	event.EndTime = time.Time{}
	if err := event.ValidateWindow(); err == nil {
		t.Error("expected error for zero timestamps")
	}
}

func TestIsActive(t *testing.T) {
	now := time.Now()

	active := &Event{EndTime: now.Add(time.Minute)}
	if !active.IsActive(now) {
		t.Error("event ending in the future should be active")
	}

	expired := &Event{EndTime: now.Add(-time.Minute)}
	if expired.IsActive(now) {
		t.Error("event ending in the past should not be active")
	}
}
