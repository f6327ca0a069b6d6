package history

import (
	"time"

	"github.com/uptrace/bun"
)

// Status tracks a translation through its lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Translation is one translation job the user has submitted
type Translation struct {
	bun.BaseModel `bun:"table:translations,alias:t"`

	ID          int64      `bun:"id,pk,autoincrement" json:"-"`
	ULID        string     `bun:"ulid,notnull,unique" json:"id"`
	TaskID      string     `bun:"task_id,nullzero" json:"taskId,omitempty"`
	FileName    string     `bun:"file_name,notnull" json:"fileName"`
	TargetLang  string     `bun:"target_lang,notnull" json:"targetLang"`
	PageCount   int        `bun:"page_count" json:"pageCount"`
	Status      Status     `bun:"status,notnull" json:"status"`
	Progress    int        `bun:"progress,notnull,default:0" json:"progress"` // 0-100
	Error       string     `bun:"error,nullzero" json:"error,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
	CompletedAt *time.Time `bun:"completed_at,nullzero" json:"completedAt,omitempty"`
}
