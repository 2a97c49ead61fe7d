package models

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// TaskStatus is stored as a small integer: 1 for TODO, 2 for DONE.
type TaskStatus int

const (
	TaskStatusTodo TaskStatus = 1
	TaskStatusDone TaskStatus = 2
)

var ErrInvalidTaskStatus = errors.New("status must be TODO or DONE")

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	OwnerID     string     `json:"owner_id"`
	Status      TaskStatus `json:"status"`
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusTodo || s == TaskStatusDone
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusTodo:
		return "TODO"
	case TaskStatusDone:
		return "DONE"
	default:
		return strconv.Itoa(int(s))
	}
}

// legacyStatusDone is the "done" code of the three-column board some older
// records were written with (1 to do, 2 in progress, 3 done).
const legacyStatusDone = 3

// TaskStatusFromCode maps a stored status code onto a known status. The legacy
// done code becomes DONE and every other unknown code becomes TODO, so a
// decoded task always has a valid status.
func TaskStatusFromCode(code int) TaskStatus {
	switch status := TaskStatus(code); {
	case status.Valid():
		return status
	case code == legacyStatusDone:
		return TaskStatusDone
	default:
		return TaskStatusTodo
	}
}

// ParseTaskStatus accepts the status name in any case or its numeric code.
func ParseTaskStatus(value string) (TaskStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TODO", "1":
		return TaskStatusTodo, nil
	case "DONE", "2":
		return TaskStatusDone, nil
	default:
		return 0, ErrInvalidTaskStatus
	}
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	return json.Marshal(s.String())
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseTaskStatus(name)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return ErrInvalidTaskStatus
	}
	if !TaskStatus(code).Valid() {
		return ErrInvalidTaskStatus
	}
	*s = TaskStatus(code)
	return nil
}
