package types

import (
  "time"

  "gorm.io/datatypes"
)

// Rating is one submission event. There is no uniqueness across
// (rater, test, marker): repeated submissions for the same item accumulate,
// and "completed" means at least one row exists.
type Rating struct {
  ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
  RaterID           uint           `gorm:"not null;index;column:rater_id" json:"rater_id"`
  Rater             *Rater         `gorm:"foreignKey:RaterID;references:ID" json:"rater,omitempty"`
  TestID            uint           `gorm:"not null;index;column:test_id" json:"test_id"`
  Test              *Test          `gorm:"foreignKey:TestID;references:ID" json:"test,omitempty"`
  ResultsJSON       datatypes.JSON `gorm:"not null;column:results_json" json:"results_json"`
  TimeOfSubmission  time.Time      `gorm:"not null;column:time_of_submission" json:"time_of_submission"`
  TimeTakenToSubmit float64        `gorm:"not null;column:time_taken_to_submit" json:"time_taken_to_submit"`
  PageNoProgress    string         `gorm:"size:50;column:page_no_progress" json:"page_no_progress"`
}

func (Rating) TableName() string {
  return "rating"
}
