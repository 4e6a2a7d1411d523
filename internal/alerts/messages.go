package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/utils"
)

// ErrInvalidMessages is returned by Replace when a message fails validation.
var ErrInvalidMessages = errors.New("invalid custom messages")

// MessageStore persists the operator's custom messages as a JSON array.
type MessageStore struct {
	path     string
	loc      *time.Location
	validate *validator.Validate
	logger   *slog.Logger

	mu sync.RWMutex
}

// NewMessageStore returns a store backed by path. Scheduled times without an
// offset are read in loc.
func NewMessageStore(path string, loc *time.Location, logger *slog.Logger) *MessageStore {
	if loc == nil {
		loc = time.Local
	}
	return &MessageStore{
		path:     path,
		loc:      loc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.Component(logger, "message_store"),
	}
}

// Path returns the backing file.
func (s *MessageStore) Path() string {
	return s.path
}

// List returns the stored messages. A missing file yields an error matching
// os.ErrNotExist.
func (s *MessageStore) List() ([]models.CustomMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var msgs []models.CustomMessage
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if msgs == nil {
		msgs = []models.CustomMessage{}
	}
	return msgs, nil
}

// Active returns the messages to show at now. Read failures are logged and
// produce an empty list; a missing file is not a failure.
func (s *MessageStore) Active(now time.Time) []models.CustomMessage {
	msgs, err := s.List()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.LogError(s.logger, "Error reading custom messages", err, slog.String("path", s.path))
		}
		return []models.CustomMessage{}
	}
	return Active(msgs, now.In(s.loc))
}

// Replace validates msgs, assigns ids to messages without one, and
// overwrites the file. The stored list is returned.
func (s *MessageStore) Replace(msgs []models.CustomMessage) ([]models.CustomMessage, error) {
	out := make([]models.CustomMessage, len(msgs))
	for i, m := range msgs {
		m.Header = utils.SanitizeInput(m.Header)
		m.Description = utils.SanitizeInput(m.Description)
		m.Routes = utils.SanitizeInput(m.Routes)
		m.Stop = utils.SanitizeInput(m.Stop)
		if err := checkText(m); err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", ErrInvalidMessages, i, err)
		}
		if err := s.validate.Struct(m); err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", ErrInvalidMessages, i, err)
		}
		if m.Status == models.MessageStatusPending && m.ScheduledTime != "" {
			if _, err := models.ParseScheduledTime(m.ScheduledTime, s.loc); err != nil {
				return nil, fmt.Errorf("%w: message %d: bad scheduledTime %q", ErrInvalidMessages, i, m.ScheduledTime)
			}
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		out[i] = m
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".custom_messages-*.json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		logging.SafeCloseWithLogging(tmp, s.logger, "custom_messages_tmp")
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return nil, err
	}

	logging.LogOperation(s.logger, "custom_messages_replaced", slog.Int("count", len(out)))
	return out, nil
}

func checkText(m models.CustomMessage) error {
	if err := utils.ValidateText("header", m.Header, utils.MaxHeaderLength); err != nil {
		return err
	}
	if err := utils.ValidateText("description", m.Description, utils.MaxDescriptionLength); err != nil {
		return err
	}
	if err := utils.ValidateReference("routes", m.Routes); err != nil {
		return err
	}
	return utils.ValidateReference("stop", m.Stop)
}
