// Package aggregator contains bank-aggregation providers.
package aggregator

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealthtrackr/internal/domain/bankconnection"
)

const (
	linkTokenTTL      = 30 * time.Minute
	syncWindowDays    = 30
	minSyncedTxns     = 5
	maxSyncedTxns     = 10
	incomeProbability = 0.2
	minAmount         = 5.0
	maxAmount         = 200.0
	incomeCategory    = "Income"
)

var merchantsByCategory = map[string][]string{
	"Food":           {"Grocery Store", "Restaurant", "Coffee Shop", "Fast Food"},
	"Shopping":       {"Department Store", "Online Retailer", "Electronics Store"},
	"Transportation": {"Gas Station", "Ride Share", "Public Transit"},
	"Entertainment":  {"Movie Theater", "Streaming Service", "Concert Venue"},
	"Bills":          {"Utility Company", "Internet Provider", "Phone Company"},
}

var supportedInstitutions = []bankconnection.SupportedInstitution{
	{ID: "ins_1", Name: "Chase", Logo: "chase.png"},
	{ID: "ins_2", Name: "Bank of America", Logo: "bofa.png"},
	{ID: "ins_3", Name: "Wells Fargo", Logo: "wellsfargo.png"},
	{ID: "ins_4", Name: "Citibank", Logo: "citi.png"},
	{ID: "ins_5", Name: "Capital One", Logo: "capitalone.png"},
	{ID: "ins_6", Name: "American Express", Logo: "amex.png"},
	{ID: "ins_7", Name: "Discover", Logo: "discover.png"},
	{ID: "ins_8", Name: "US Bank", Logo: "usbank.png"},
	{ID: "ins_9", Name: "PNC Bank", Logo: "pnc.png"},
	{ID: "ins_10", Name: "TD Bank", Logo: "tdbank.png"},
}

// Sandbox simulates an aggregator: it issues fake tokens and fabricates a
// handful of recent transactions on every fetch.
type Sandbox struct {
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	categories []string
}

// NewSandbox creates a sandbox provider. A zero seed uses the current time.
func NewSandbox(seed int64) *Sandbox {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	categories := make([]string, 0, len(merchantsByCategory))
	for c := range merchantsByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Sandbox{
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
		categories: categories,
	}
}

func (s *Sandbox) IssueLinkToken(ctx context.Context) (*bankconnection.LinkToken, error) {
	return &bankconnection.LinkToken{
		LinkToken:  "link-sandbox-" + hex(32),
		Expiration: s.now().UTC().Add(linkTokenTTL),
	}, nil
}

func (s *Sandbox) ExchangePublicToken(ctx context.Context, publicToken string) (*bankconnection.Credentials, error) {
	if strings.TrimSpace(publicToken) == "" {
		return nil, errors.New("public token is empty")
	}
	return &bankconnection.Credentials{
		AccessToken: "access-token-" + hex(16),
		ItemID:      "item-" + hex(16),
	}, nil
}

func (s *Sandbox) FetchTransactions(ctx context.Context, conn *bankconnection.Connection, link *bankconnection.Link) ([]bankconnection.ProviderTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if conn.AccessToken == "" {
		return nil, errors.New("connection has no access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().UTC()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	n := minSyncedTxns + s.rng.Intn(maxSyncedTxns-minSyncedTxns+1)
	out := make([]bankconnection.ProviderTransaction, 0, n)
	for i := 0; i < n; i++ {
		category := s.categories[s.rng.Intn(len(s.categories))]
		merchants := merchantsByCategory[category]
		merchant := merchants[s.rng.Intn(len(merchants))]

		amount := decimal.NewFromFloat(minAmount + s.rng.Float64()*(maxAmount-minAmount)).Round(2)
		if s.rng.Float64() < incomeProbability {
			category = incomeCategory
		} else {
			amount = amount.Neg()
		}

		out = append(out, bankconnection.ProviderTransaction{
			ExternalID:  link.ExternalAccountID + "-" + hex(8),
			Date:        today.AddDate(0, 0, -s.rng.Intn(syncWindowDays+1)),
			Amount:      amount.InexactFloat64(),
			Payee:       merchant,
			Category:    category,
			Description: "Transaction at " + merchant,
		})
	}
	return out, nil
}

func (s *Sandbox) SupportedInstitutions(ctx context.Context) ([]bankconnection.SupportedInstitution, error) {
	return append([]bankconnection.SupportedInstitution(nil), supportedInstitutions...), nil
}

func hex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
