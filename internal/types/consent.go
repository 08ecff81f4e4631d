package types

import (
  "time"
)

// Consent is an append-only acknowledgment event. Repeated calls add rows;
// "has consented" means at least one row exists for the (rater, test) pair.
type Consent struct {
  ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
  RaterID          uint      `gorm:"not null;index;column:rater_id" json:"rater_id"`
  Rater            *Rater    `gorm:"foreignKey:RaterID;references:ID" json:"rater,omitempty"`
  TestID           uint      `gorm:"not null;index;column:test_id" json:"test_id"`
  Test             *Test     `gorm:"foreignKey:TestID;references:ID" json:"test,omitempty"`
  TimeOfSubmission time.Time `gorm:"not null;column:time_of_submission" json:"time_of_submission"`
}

func (Consent) TableName() string {
  return "consent"
}
