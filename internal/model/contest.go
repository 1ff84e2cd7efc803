package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContestStatus represents where a contest is in the approval lifecycle.
type ContestStatus string

const (
	ContestStatusPending   ContestStatus = "pending"
	ContestStatusConfirmed ContestStatus = "confirmed"
	ContestStatusRejected  ContestStatus = "rejected"
)

// SubmissionStatus flags a submission.
type SubmissionStatus string

const SubmissionWinner SubmissionStatus = "winner"

// DefaultContestDuration is how long a contest runs when the creator gives no end date.
const DefaultContestDuration = 3 * 24 * time.Hour

// Contest is a creator-posted contest with its participants and submissions.
type Contest struct {
	ID              string          `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	Title           string          `json:"title" gorm:"size:255;not null" bson:"title"`
	Description     string          `json:"description" gorm:"type:text" bson:"description"`
	Category        string          `json:"category" gorm:"size:100;index" bson:"category"`
	Image           string          `json:"image" gorm:"size:1024" bson:"image"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0" bson:"price"`
	PrizeMoney      decimal.Decimal `json:"prizeMoney" gorm:"type:decimal(20,2);not null;default:0" bson:"prize_money"`
	TaskInstruction string          `json:"taskInstruction" gorm:"type:text" bson:"task_instruction"`
	CreatorEmail    string          `json:"creatorEmail" gorm:"size:255;not null;index" bson:"creator_email"`
	Status          ContestStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index" bson:"status"`
	IsActive        bool            `json:"isActive" gorm:"default:true" bson:"is_active"`
	EndDate         time.Time       `json:"endDate" bson:"end_date"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updated_at"`

	Participants []string     `json:"participants" gorm:"-" bson:"participants"`
	Submissions  []Submission `json:"submissions" gorm:"foreignKey:ContestID;constraint:OnDelete:CASCADE" bson:"submissions"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Contest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether email is the contest's creator.
func (c *Contest) OwnedBy(email string) bool {
	return c.CreatorEmail == NormalizeEmail(email)
}

// HasParticipant reports whether email joined the contest.
func (c *Contest) HasParticipant(email string) bool {
	email = NormalizeEmail(email)
	for _, p := range c.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// HasWinner reports whether any submission carries the winner flag.
func (c *Contest) HasWinner() bool {
	for _, s := range c.Submissions {
		if s.Status == SubmissionWinner {
			return true
		}
	}
	return false
}

// Participant is one participant row of a contest in the SQL store.
type Participant struct {
	ContestID string    `gorm:"type:char(36);primaryKey"`
	Email     string    `gorm:"size:255;primaryKey;index"`
	JoinedAt  time.Time `gorm:"not null"`
}

// Submission is a participant's entry for a contest.
type Submission struct {
	ID          string           `json:"id" gorm:"type:char(36);primaryKey" bson:"id"`
	ContestID   string           `json:"-" gorm:"type:char(36);not null;index" bson:"-"`
	Email       string           `json:"email" gorm:"size:255;not null;index" bson:"email"`
	Name        string           `json:"name,omitempty" gorm:"size:255" bson:"name,omitempty"`
	Submission  string           `json:"submission" gorm:"type:text;not null" bson:"submission"`
	SubmittedAt time.Time        `json:"submittedAt" gorm:"not null" bson:"submitted_at"`
	Status      SubmissionStatus `json:"status,omitempty" gorm:"type:varchar(20);index" bson:"status,omitempty"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ContestContent is the creator-supplied part of a contest.
type ContestContent struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Image           string          `json:"image"`
	Price           decimal.Decimal `json:"price"`
	PrizeMoney      decimal.Decimal `json:"prizeMoney"`
	TaskInstruction string          `json:"taskInstruction"`
	EndDate         *time.Time      `json:"endDate"`
}

// ContestPatch is the allow-listed subset a creator may change at any status.
type ContestPatch struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Image           *string          `json:"image"`
	Price           *decimal.Decimal `json:"price"`
	PrizeMoney      *decimal.Decimal `json:"prizeMoney"`
	TaskInstruction *string          `json:"taskInstruction"`
	Category        *string          `json:"category"`
	EndDate         *time.Time       `json:"endDate"`
	IsActive        *bool            `json:"isActive"`
}

// Empty reports whether the patch carries no fields.
func (p ContestPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil && p.Price == nil &&
		p.PrizeMoney == nil && p.TaskInstruction == nil && p.Category == nil &&
		p.EndDate == nil && p.IsActive == nil
}

// Apply writes the supplied fields onto c.
func (p ContestPatch) Apply(c *Contest) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.PrizeMoney != nil {
		c.PrizeMoney = *p.PrizeMoney
	}
	if p.TaskInstruction != nil {
		c.TaskInstruction = *p.TaskInstruction
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// ContestFilter narrows a contest listing. Zero values do not filter.
type ContestFilter struct {
	CreatorEmail string
	Category     string
	Search       string
	Participant  string
	Winner       string
}

// SubmissionView is what a creator sees when reviewing entries.
type SubmissionView struct {
	ParticipantName  string    `json:"participantName"`
	ParticipantEmail string    `json:"participantEmail"`
	Submission       string    `json:"submission"`
	SubmittedAt      time.Time `json:"submittedAt"`
	IsWinner         bool      `json:"isWinner"`
}
