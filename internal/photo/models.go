package photo

import (
	"strings"

	"github.com/abduss/photocat/internal/storeerr"
)

// Record is the catalog metadata describing a single photo. PhotoNumber is the
// table key and joins the record to a stored object by operator convention only.
type Record struct {
	PhotoNumber  string `json:"photo_number" dynamodbav:"PhotoNumber"`
	Description  string `json:"description" dynamodbav:"Description"`
	FileName     string `json:"file_name" dynamodbav:"FileName"`
	Photographer string `json:"photographer" dynamodbav:"Photographer"`
	Date         string `json:"date" dynamodbav:"Date"`
	Title        string `json:"title" dynamodbav:"Title"`
	Location     string `json:"location" dynamodbav:"Location"`
}

// Validate checks the invariants a record must hold before it is written.
func (r Record) Validate() error {
	if strings.TrimSpace(r.PhotoNumber) == "" {
		return storeerr.Validation("validate record", "", "photo number is required")
	}
	return nil
}
