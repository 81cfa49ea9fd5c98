package mailer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistrationConfirmation(t *testing.T) {
	date := time.Date(2030, 5, 17, 18, 30, 0, 0, time.UTC)
	msg, err := RegistrationConfirmation(Confirmation{
		To:          "ada@example.com",
		Name:        "Ada",
		Title:       "Go <script>alert(1)</script> Night",
		Date:        date,
		Venue:       "Hall A",
		MeetingLink: "https://zoom.example/j/1",
		QRCode:      "data:image/png;base64,iVBORw0KGgo=",
	})
	if err != nil {
		t.Fatal(err)
	}

	if msg.Kind != KindConfirmation || msg.To != "ada@example.com" {
		t.Errorf("message = %+v", msg)
	}
	if !strings.HasPrefix(msg.Subject, "Registration confirmed: Go") {
		t.Errorf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"Friday, 17 May 2030 18:30 UTC", "Hall A", "https://zoom.example/j/1"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("text missing %q:\n%s", want, msg.Text)
		}
	}
	if strings.Contains(msg.Text, "data:image/png") {
		t.Error("text part should not carry the image")
	}
	if !strings.Contains(msg.HTML, `src="data:image/png;base64,iVBORw0KGgo="`) {
		t.Errorf("html missing qr image:\n%s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Errorf("html contains raw script tag:\n%s", msg.HTML)
	}
}

func TestReminderMessageDefaultsMeetingLink(t *testing.T) {
	msg, err := ReminderMessage(Reminder{
		To:    "ada@example.com",
		Name:  "Ada",
		Title: "GopherCon",
		Date:  time.Date(2030, 5, 18, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "Reminder: GopherCon is tomorrow" || msg.Kind != KindReminder {
		t.Errorf("message = %+v", msg)
	}
	if !strings.Contains(msg.Text, "Meeting link: N/A") {
		t.Errorf("text = %s", msg.Text)
	}
}

func TestDispatcherRecordsFailuresWithoutPanicking(t *testing.T) {
	var calls atomic.Int32
	sender := SenderFunc(func(ctx context.Context, msg Message) error {
		calls.Add(1)
		switch msg.To {
		case "fail@example.com":
			return errors.New("relay down")
		case "panic@example.com":
			panic("boom")
		}
		return nil
	})
	d := NewDispatcher(sender, time.Second)

	d.Dispatch(Message{To: "ok@example.com"})
	d.Dispatch(Message{To: "fail@example.com"})
	d.Dispatch(Message{To: "panic@example.com"})
	d.Wait()

	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if err := d.Send(context.Background(), Message{To: "panic@example.com"}); err == nil {
		t.Error("panic should surface as an error from Send")
	}
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	sender := SenderFunc(func(ctx context.Context, msg Message) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := NewDispatcher(sender, 20*time.Millisecond)

	start := time.Now()
	err := d.Send(context.Background(), Message{To: "slow@example.com"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("send was not bounded by the dispatcher timeout")
	}
}

func TestSMTPSenderNotConfigured(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{})
	if err := s.Send(context.Background(), Message{To: "a@example.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSMTPBuildMultipart(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "noreply@example.com", FromName: "EventHub"})
	body, err := s.build(Message{
		To:      "ada@example.com",
		Subject: "Registration confirmed: GopherCon",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	})
	if err != nil {
		t.Fatal(err)
	}
	raw := string(body)
	for _, want := range []string{
		"From: EventHub <noreply@example.com>\r\n",
		"To: ada@example.com\r\n",
		"MIME-Version: 1.0\r\n",
		"multipart/alternative",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
		"plain body",
		"<p>html body</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
}
