package types

// Study binds a test to an external panel-service study and carries the URL
// participants are redirected to on completion.
type Study struct {
  ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
  StudyID       string `gorm:"size:100;uniqueIndex;not null;column:study_id" json:"study_id"`
  TestID        uint   `gorm:"not null;column:test_id" json:"test_id"`
  Test          *Test  `gorm:"foreignKey:TestID;references:ID" json:"test,omitempty"`
  CompletionURL string `gorm:"size:512;not null;column:completion_url" json:"completion_url"`
}

func (Study) TableName() string {
  return "study"
}
