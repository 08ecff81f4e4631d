package types

import (
  "encoding/json"

  "gorm.io/datatypes"
)

// Test is a catalog entry: an ordered list of rateable items sharing a schema.
// Items is stored as a JSON array; each element is an opaque object carrying at
// minimum an integer "id" unique within the test (upheld by the loader, not by
// the schema).
type Test struct {
  ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
  TestType    string         `gorm:"size:512;not null;column:test_type" json:"test_type"`
  Description string         `gorm:"type:text;column:description" json:"description"`
  Items       datatypes.JSON `gorm:"not null;column:json_entry" json:"json_entry"`
}

func (Test) TableName() string {
  return "test"
}

// Entries decodes the stored item list.
func (t *Test) Entries() ([]map[string]any, error) {
  if len(t.Items) == 0 {
    return []map[string]any{}, nil
  }
  var entries []map[string]any
  if err := json.Unmarshal(t.Items, &entries); err != nil {
    return nil, err
  }
  return entries, nil
}
