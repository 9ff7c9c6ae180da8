package models

import (
	"fmt"
	"time"
)

const ProposalStatusPending = "Pending"

// Proposal is a stored customer proposal.
type Proposal struct {
	ID             int64    `json:"id" db:"id"`
	CustomerName   string   `json:"customer_name" db:"customer_name"`
	Email          string   `json:"email" db:"email"`
	Phone          *string  `json:"phone" db:"phone"`
	Address        *string  `json:"address" db:"address"`
	SystemType     string   `json:"system_type" db:"system_type"`
	Status         string   `json:"status" db:"status"`
	SubmissionDate Date     `json:"submission_date" db:"submission_date"`
	EstimatedCost  *float64 `json:"estimated_cost" db:"estimated_cost"`
}

type ProposalCreate struct {
	CustomerName   string   `json:"customer_name" validate:"required"`
	Email          string   `json:"email" validate:"required,contains=@"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	SystemType     string   `json:"system_type" validate:"required"`
	Status         string   `json:"status"`
	SubmissionDate *Date    `json:"submission_date"`
	EstimatedCost  *float64 `json:"estimated_cost" validate:"omitempty,gte=0"`
}

// ProposalUpdate carries a partial update; nil fields are left untouched.
type ProposalUpdate struct {
	CustomerName  *string  `json:"customer_name" validate:"omitempty,min=1"`
	Email         *string  `json:"email" validate:"omitempty,contains=@"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	SystemType    *string  `json:"system_type" validate:"omitempty,min=1"`
	Status        *string  `json:"status" validate:"omitempty,min=1"`
	EstimatedCost *float64 `json:"estimated_cost" validate:"omitempty,gte=0"`
}

// Empty reports whether the update changes nothing.
func (u ProposalUpdate) Empty() bool {
	return u.CustomerName == nil && u.Email == nil && u.Phone == nil && u.Address == nil &&
		u.SystemType == nil && u.Status == nil && u.EstimatedCost == nil
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s, want \"YYYY-MM-DD\"", s)
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
