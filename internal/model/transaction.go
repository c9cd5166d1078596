package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// SpendTransaction is a single card or bank statement line attributed to a user.
type SpendTransaction struct {
	Date      time.Time
	ID        string
	UserID    string
	Name      string // Raw statement description
	AccountID string
	Hash      string
	Category  string // Spending category assigned on import
	Amount    float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *SpendTransaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		t.UserID,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
