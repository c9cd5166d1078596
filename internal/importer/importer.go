// Package importer loads card catalogs, user profiles, precomputed model
// scores and spending totals from CSV or TSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/cardwise/internal/model"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// Store is the persistence subset the importer writes to.
type Store interface {
	SaveCards(ctx context.Context, cards []model.Candidate) error
	SaveUser(ctx context.Context, profile *model.UserProfile) error
	SaveModelScores(ctx context.Context, scores []model.ModelScore) error
	AddSpending(ctx context.Context, userID string, amounts map[string]float64) error
}

// Kind names one of the supported import files.
type Kind string

// Supported import kinds.
const (
	KindCards    Kind = "cards"
	KindUsers    Kind = "users"
	KindScores   Kind = "scores"
	KindSpending Kind = "spending"
)

// Header aliases, first entry is the canonical name.
var (
	cardColumns = map[string][]string{
		"card_id":           {"card_id", "id"},
		"name":              {"name", "card_name"},
		"issuer":            {"issuer", "corporate"},
		"benefits":          {"benefits"},
		"type":              {"type", "card_type"},
		"detailed_benefits": {"detailed_benefits"},
		"image_url":         {"image_url"},
	}
	userColumns = map[string][]string{
		"user_id":          {"user_id"},
		"age_band":         {"age_band", "age"},
		"gender":           {"gender"},
		"income_level":     {"income_level"},
		"occupation":       {"occupation", "job_category"},
		"spending_summary": {"spending_summary", "spending_pattern"},
	}
	scoreColumns = map[string][]string{
		"user_id": {"user_id"},
		"card_id": {"card_id"},
		"score":   {"score"},
		"rank":    {"rank", "ranking"},
	}
)

// ImportFile reads path and writes its rows to store. The delimiter is a
// tab for .tsv files and a comma otherwise. It returns the number of rows
// imported.
func ImportFile(ctx context.Context, store Store, kind Kind, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return Import(ctx, store, kind, f, comma)
}

// Import reads delimited rows of the given kind from r and writes them to store.
func Import(ctx context.Context, store Store, kind Kind, r io.Reader, comma rune) (int, error) {
	switch kind {
	case KindCards:
		cards, err := ReadCards(r, comma)
		if err != nil {
			return 0, err
		}
		if len(cards) == 0 {
			return 0, nil
		}
		if err := store.SaveCards(ctx, cards); err != nil {
			return 0, fmt.Errorf("save cards: %w", err)
		}
		return len(cards), nil

	case KindUsers:
		users, err := ReadUsers(r, comma)
		if err != nil {
			return 0, err
		}
		for i := range users {
			if err := store.SaveUser(ctx, &users[i]); err != nil {
				return i, fmt.Errorf("save user %s: %w", users[i].UserID, err)
			}
		}
		return len(users), nil

	case KindScores:
		scores, err := ReadScores(r, comma)
		if err != nil {
			return 0, err
		}
		if len(scores) == 0 {
			return 0, nil
		}
		if err := store.SaveModelScores(ctx, scores); err != nil {
			return 0, fmt.Errorf("save model scores: %w", err)
		}
		return len(scores), nil

	case KindSpending:
		spending, rows, err := ReadSpending(r, comma)
		if err != nil {
			return 0, err
		}
		for userID, amounts := range spending {
			if err := store.AddSpending(ctx, userID, amounts); err != nil {
				return 0, fmt.Errorf("save spending for %s: %w", userID, err)
			}
		}
		return rows, nil
	}

	return 0, fmt.Errorf("unknown import kind %q", kind)
}

// ReadCards parses a card catalog.
func ReadCards(r io.Reader, comma rune) ([]model.Candidate, error) {
	header, rows, err := readTable(r, comma)
	if err != nil {
		return nil, err
	}
	cols, err := resolve(header, cardColumns, "card_id", "name")
	if err != nil {
		return nil, err
	}

	cards := make([]model.Candidate, 0, len(rows))
	for _, row := range rows {
		card := model.Candidate{
			CardID:           cols.get(row, "card_id"),
			Name:             cols.get(row, "name"),
			Issuer:           cols.get(row, "issuer"),
			RawBenefits:      cols.get(row, "benefits"),
			Type:             cols.get(row, "type"),
			DetailedBenefits: cols.get(row, "detailed_benefits"),
			ImageURL:         cols.get(row, "image_url"),
		}
		if card.CardID == "" {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ReadUsers parses user profiles.
func ReadUsers(r io.Reader, comma rune) ([]model.UserProfile, error) {
	header, rows, err := readTable(r, comma)
	if err != nil {
		return nil, err
	}
	cols, err := resolve(header, userColumns, "user_id")
	if err != nil {
		return nil, err
	}

	users := make([]model.UserProfile, 0, len(rows))
	for _, row := range rows {
		u := model.UserProfile{
			UserID:          cols.get(row, "user_id"),
			AgeBand:         cols.get(row, "age_band"),
			Gender:          cols.get(row, "gender"),
			IncomeLevel:     cols.get(row, "income_level"),
			Occupation:      cols.get(row, "occupation"),
			SpendingSummary: cols.get(row, "spending_summary"),
		}
		if u.UserID == "" {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// ReadScores parses precomputed model scores. A missing or empty rank is
// filled with the row's position among that user's rows.
func ReadScores(r io.Reader, comma rune) ([]model.ModelScore, error) {
	header, rows, err := readTable(r, comma)
	if err != nil {
		return nil, err
	}
	cols, err := resolve(header, scoreColumns, "user_id", "card_id", "score")
	if err != nil {
		return nil, err
	}

	positions := make(map[string]int)
	scores := make([]model.ModelScore, 0, len(rows))
	for i, row := range rows {
		s := model.ModelScore{
			UserID: cols.get(row, "user_id"),
			CardID: cols.get(row, "card_id"),
		}
		if s.UserID == "" || s.CardID == "" {
			continue
		}

		s.Score, err = strconv.ParseFloat(cols.get(row, "score"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid score: %w", i+2, err)
		}

		positions[s.UserID]++
		if raw := cols.get(row, "rank"); raw != "" {
			s.Rank, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rank: %w", i+2, err)
			}
		} else {
			s.Rank = positions[s.UserID]
		}

		scores = append(scores, s)
	}
	return scores, nil
}

// ReadSpending parses per-user spending. Two layouts are accepted: long
// (user_id, category, amount) and wide, where every column other than
// user_id and total is a category. Amounts for the same user and category
// are summed. The second return value is the number of data rows read.
func ReadSpending(r io.Reader, comma rune) (map[string]map[string]float64, int, error) {
	header, rows, err := readTable(r, comma)
	if err != nil {
		return nil, 0, err
	}

	userIdx := indexOf(header, "user_id")
	if userIdx < 0 {
		return nil, 0, fmt.Errorf("%w: user_id", ErrMissingColumn)
	}

	out := make(map[string]map[string]float64)
	add := func(userID, category string, amount float64) {
		if out[userID] == nil {
			out[userID] = make(map[string]float64)
		}
		out[userID][category] += amount
	}

	categoryIdx, amountIdx := indexOf(header, "category"), indexOf(header, "amount")
	long := categoryIdx >= 0 && amountIdx >= 0

	count := 0
	for i, row := range rows {
		userID := cell(row, userIdx)
		if userID == "" {
			continue
		}
		count++

		if long {
			category := cell(row, categoryIdx)
			if category == "" {
				continue
			}
			amount, err := parseAmount(cell(row, amountIdx))
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: %w", i+2, err)
			}
			add(userID, category, amount)
			continue
		}

		for j, name := range header {
			if j == userIdx || name == "" || name == "total" {
				continue
			}
			amount, err := parseAmount(cell(row, j))
			if err != nil {
				return nil, 0, fmt.Errorf("row %d column %s: %w", i+2, name, err)
			}
			add(userID, name, amount)
		}
	}
	return out, count, nil
}

func parseAmount(raw string) (float64, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

func readTable(r io.Reader, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read table: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("empty file")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(cleanCell(h))
	}
	return header, rows[1:], nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

func resolve(header []string, aliases map[string][]string, required ...string) (columns, error) {
	cols := make(columns)
	for canonical, names := range aliases {
		for _, name := range names {
			if idx := indexOf(header, name); idx >= 0 {
				cols[canonical] = idx
				break
			}
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

// cleanCell strips whitespace and a UTF-8 byte order mark.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
