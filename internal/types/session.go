package types

// Session records one panel-service participant visit. The external session id
// is unique; re-creating an existing session re-fetches instead of erroring.
type Session struct {
  ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
  SessionID     string `gorm:"size:100;uniqueIndex;not null;column:session_id" json:"session_id"`
  StudyID       uint   `gorm:"not null;column:study_id" json:"study_id"`
  Study         *Study `gorm:"foreignKey:StudyID;references:ID" json:"study,omitempty"`
  ParticipantID string `gorm:"size:100;not null;column:participant_id" json:"participant_id"`
}

func (Session) TableName() string {
  return "session"
}
