package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240130120000[0:GMT]
<TRNAMT>-12.00
<FITID>2024013001
<NAME>MONTHLY MAINTENANCE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>PAYMENT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>200.00
<FITID>CC2024012001
<NAME>PAYMENT THANK YOU
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 4,
		},
		{
			name:          "credit card statement skips payment",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(nil)

			transactions, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData), "u1")

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, transactions, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	transactions, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "u1")
	require.NoError(t, err)
	require.Len(t, transactions, 4)

	tx1 := transactions[0]
	assert.Equal(t, "2024011501", tx1.ID)
	assert.Equal(t, "u1", tx1.UserID)
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.Name)
	assert.Equal(t, 25.50, tx1.Amount)
	assert.Equal(t, "1234567890", tx1.AccountID)
	assert.Equal(t, CategoryDining, tx1.Category)
	assert.Equal(t, tx1.GenerateHash(), tx1.Hash)
	assert.Equal(t, 2024, tx1.Date.Year())
	assert.Equal(t, time.January, tx1.Date.Month())
	assert.Equal(t, 15, tx1.Date.Day())

	tx2 := transactions[1]
	assert.Equal(t, "Whole Foods Market", tx2.Name)
	assert.Equal(t, 125.00, tx2.Amount)
	assert.Equal(t, CategoryGrocery, tx2.Category)

	tx3 := transactions[2]
	assert.Equal(t, "CHECK #1234", tx3.Name)
	assert.Equal(t, CategoryOther, tx3.Category)

	assert.Equal(t, CategoryFees, transactions[3].Category)
}

func TestParseCreditCardTransactions(t *testing.T) {
	transactions, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX), "u2")
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", transactions[0].Name)
	assert.Equal(t, 45.99, transactions[0].Amount)
	assert.Equal(t, "4111111111111111", transactions[0].AccountID)
	assert.Equal(t, CategoryOnline, transactions[0].Category)

	assert.Equal(t, "NETFLIX.COM", transactions[1].Name)
	assert.Equal(t, CategoryCulture, transactions[1].Category)
}

func TestPreprocessOFX(t *testing.T) {
	p := NewParser(nil)
	in := "\n\n  <SEVERITY>Info</SEVERITY>\n<CODE\n"
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", p.preprocessOFX(in))
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "PURCHASE AUTHORIZED ON 01/15 CHIPOTLE"},
			expected: "CHIPOTLE",
		},
		{
			name:     "generic name uses memo",
			tx:       ofxgo.Transaction{Name: "PURCHASE", Memo: "UNIQLO SOHO"},
			expected: "UNIQLO SOHO",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "XX", Payee: &ofxgo.Payee{Name: "Hilton Hotels"}},
			expected: "Hilton Hotels",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractMerchantName(tt.tx))
		})
	}
}

func TestAggregate(t *testing.T) {
	txns := []model.SpendTransaction{
		{Category: CategoryDining, Amount: 20},
		{Category: CategoryDining, Amount: 5.5},
		{Category: CategoryTravel, Amount: 300},
		{Category: "", Amount: 10},
		{Category: CategoryOther, Amount: 0},
	}

	assert.Equal(t, map[string]float64{
		CategoryDining: 25.5,
		CategoryTravel: 300,
	}, Aggregate(txns))
	assert.Empty(t, Aggregate(nil))
}
