// Package ofx turns OFX/QFX bank and credit card statements into spending data.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/cardwise/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX statement parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses a statement and returns the purchases it contains,
// attributed to userID and categorized. Credits such as payments and
// refunds are not spending and are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, userID string) ([]model.SpendTransaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		transactions     []model.SpendTransaction
		bankStmts, cards int
		skipped          int
	)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, credits := p.convertList(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), userID)
		transactions = append(transactions, txns...)
		skipped += credits
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		cards++
		txns, credits := p.convertList(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), userID)
		transactions = append(transactions, txns...)
		skipped += credits
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("parsed OFX file",
		"user_id", userID,
		"purchases", len(transactions),
		"credits_skipped", skipped,
		"bank_statements", bankStmts,
		"cc_statements", cards)

	return transactions, nil
}

func (p *Parser) convertList(list []ofxgo.Transaction, accountID, userID string) ([]model.SpendTransaction, int) {
	txns := make([]model.SpendTransaction, 0, len(list))
	skipped := 0
	for _, ofxTx := range list {
		tx, ok := p.convertTransaction(ofxTx, accountID, userID)
		if !ok {
			skipped++
			continue
		}
		txns = append(txns, tx)
	}
	return txns, skipped
}

// convertTransaction converts a debit into a SpendTransaction. OFX reports
// money leaving the account as a negative amount.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, userID string) (model.SpendTransaction, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount >= 0 {
		return model.SpendTransaction{}, false
	}

	tx := model.SpendTransaction{
		ID:        string(ofxTx.FiTID),
		UserID:    userID,
		Date:      ofxTx.DtPosted.Time,
		Name:      extractMerchantName(ofxTx),
		Amount:    -amount,
		AccountID: accountID,
	}

	switch ofxTx.TrnType {
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		tx.Category = CategoryFees
	case ofxgo.TrnTypeATM, ofxgo.TrnTypeCash:
		tx.Category = CategoryCash
	default:
		tx.Category = Categorize(tx.Name)
	}

	tx.Hash = tx.GenerateHash()
	return tx, true
}

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// MEMO sometimes carries the merchant when NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD "
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// Aggregate sums purchase amounts per category.
func Aggregate(txns []model.SpendTransaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txns {
		if tx.Category == "" || tx.Amount <= 0 {
			continue
		}
		totals[tx.Category] += tx.Amount
	}
	return totals
}
