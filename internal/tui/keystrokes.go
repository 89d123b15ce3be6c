package tui

import (
	"time"

	"github.com/google/uuid"

	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// flushThreshold is how many buffered events trigger an automatic
// flush; smaller batches only go out on screen changes and quit.
const flushThreshold = 20

// keystrokeRecorder buffers typing events for one TUI session and
// hands them out in batches. The recorder itself never talks to the
// network; the app turns TakeBatch results into client calls.
type keystrokeRecorder struct {
	sessionID string
	userID    string
	page      string
	events    []storage.KeystrokeEvent
}

func newKeystrokeRecorder() *keystrokeRecorder {
	return &keystrokeRecorder{sessionID: "tui-" + uuid.NewString()}
}

// SetContext updates who is typing and on which screen. Events already
// buffered keep the batch they were recorded under.
func (r *keystrokeRecorder) SetContext(userID, page string) {
	r.userID = userID
	r.page = page
}

// Record buffers one typing event.
func (r *keystrokeRecorder) Record(key, inputValue, fieldName string) {
	r.events = append(r.events, storage.KeystrokeEvent{
		Key:        key,
		InputValue: inputValue,
		FieldName:  fieldName,
		EventType:  "keydown",
		TypedAt:    time.Now().UTC(),
	})
}

// Full reports whether the buffer reached the flush threshold.
func (r *keystrokeRecorder) Full() bool {
	return len(r.events) >= flushThreshold
}

// TakeBatch drains the buffer into a log ready for the API. ok is
// false when there is nothing to send.
func (r *keystrokeRecorder) TakeBatch() (storage.KeystrokeLog, bool) {
	if len(r.events) == 0 {
		return storage.KeystrokeLog{}, false
	}
	batch := storage.KeystrokeLog{
		SessionID: r.sessionID,
		UserID:    r.userID,
		Page:      r.page,
		Events:    r.events,
		Metadata:  map[string]string{"source": "tui"},
	}
	r.events = nil
	return batch, true
}
