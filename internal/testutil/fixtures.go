package testutil

import "github.com/Veraticus/cardwise/internal/model"

// Fixture is a named set of rows to seed.
type Fixture struct {
	Spending map[string]map[string]float64
	Name     string
	Cards    []model.Candidate
	Users    []model.UserProfile
	Scores   []model.ModelScore
}

// Card IDs in FixtureCatalog.
const (
	CardDining = "dining-plus"
	CardTravel = "sky-miles"
	CardFuel   = "road-saver"
	CardBasic  = "everyday"
)

// UserDiner is the user in FixtureDiner.
const UserDiner = "u-diner"

// Predefined fixtures.
var (
	// FixtureCatalog is a small card catalog covering distinct categories.
	FixtureCatalog = Fixture{
		Name: "catalog",
		Cards: []model.Candidate{
			{
				CardID:      CardDining,
				Name:        "Dining Plus",
				Issuer:      "Acme Bank",
				Type:        "credit",
				RawBenefits: "dining: 5% back at restaurants; grocery: 2% back",
			},
			{
				CardID:      CardTravel,
				Name:        "Sky Miles",
				Issuer:      "Globe Card",
				Type:        "credit",
				RawBenefits: "travel: 3x miles on flights; hotel: free night each year",
			},
			{
				CardID:      CardFuel,
				Name:        "Road Saver",
				Issuer:      "Acme Bank",
				Type:        "check",
				RawBenefits: "fuel: 10 cents off per liter",
			},
			{
				CardID:      CardBasic,
				Name:        "Everyday",
				Issuer:      "Plain Bank",
				Type:        "credit",
				RawBenefits: "1% back on everything",
			},
		},
	}

	// FixtureDiner is a user who mostly spends on dining, with model scores
	// over FixtureCatalog.
	FixtureDiner = Fixture{
		Name: "diner",
		Users: []model.UserProfile{{
			UserID:      UserDiner,
			AgeBand:     "30s",
			Gender:      "female",
			IncomeLevel: "middle",
			Occupation:  "office worker",
		}},
		Spending: map[string]map[string]float64{
			UserDiner: {"dining": 600, "shopping": 300, "travel": 100},
		},
		Scores: []model.ModelScore{
			{UserID: UserDiner, CardID: CardDining, Score: 0.9, Rank: 1},
			{UserID: UserDiner, CardID: CardBasic, Score: 0.5, Rank: 2},
			{UserID: UserDiner, CardID: "retired-card", Score: 0.4, Rank: 3},
		},
	}
)
