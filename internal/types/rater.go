package types

import (
  "time"
)

const (
  RaterKindDirect = "direct"
  RaterKindPanel  = "panel"
)

type Rater struct {
  ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
  Name      string    `gorm:"size:100;uniqueIndex;not null;column:name" json:"name"`
  Age       int       `gorm:"not null;column:age" json:"age"`
  Gender    string    `gorm:"size:10;not null;column:gender" json:"gender"`
  Email     string    `gorm:"size:100;uniqueIndex;not null;column:email" json:"email"`
  Password  string    `gorm:"size:255;not null;column:password" json:"-"`
  Kind      string    `gorm:"size:10;not null;default:'direct';column:kind" json:"kind"`
  CreatedAt time.Time `json:"created_at"`
}

func (Rater) TableName() string {
  return "rater"
}
