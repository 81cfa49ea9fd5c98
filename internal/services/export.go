package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

type Exporter struct {
	users store.UserStore
}

func NewExporter(users store.UserStore) *Exporter {
	return &Exporter{users: users}
}

type Export struct {
	Filename string
	Data     []byte
}

// ExportAttendees renders the attendees of event as CSV with the columns
// id, name and email, in registration order. The output depends only on
// stored data.
func (e *Exporter) ExportAttendees(ctx context.Context, event *models.Event) (*Export, error) {
	users, err := e.users.ListUsers(ctx, event.Attendees)
	if err != nil {
		return nil, fmt.Errorf("loading attendees: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "email"}); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := w.Write([]string{u.ID.String(), u.Name, u.Email}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("writing csv: %w", err)
	}

	return &Export{Filename: ExportFilename(event.Title), Data: buf.Bytes()}, nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "-", `\`, "-", `"`, "", "'", "", "\r", "", "\n", "", ";", "",
)

func ExportFilename(title string) string {
	name := strings.TrimSpace(filenameReplacer.Replace(title))
	if name == "" {
		name = "event"
	}
	return name + "-attendees.csv"
}
