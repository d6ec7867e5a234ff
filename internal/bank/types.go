package bank

import "finboard/internal/core"

// Account is one account exposed by the feed provider. DefaultCategory is
// the feed category holding the account's main transaction stream.
type Account struct {
	UID             string `json:"accountUid"`
	DefaultCategory string `json:"defaultCategory"`
	Name            string `json:"name"`
}

// Space is a named savings sub-allocation with its own target and saved
// amount.
type Space struct {
	UID    string
	Name   string
	Target core.Money
	Saved  core.Money
}

// Wire shapes. Monetary fields arrive as minor-unit integers except the
// spending-insight netSpend, which the provider reports in display units.

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type wireAmount struct {
	MinorUnits int64  `json:"minorUnits"`
	Currency   string `json:"currency"`
}

type balanceResponse struct {
	EffectiveBalance wireAmount `json:"effectiveBalance"`
}

type feedResponse struct {
	FeedItems []feedItem `json:"feedItems"`
}

type feedItem struct {
	UID              string     `json:"feedItemUid"`
	Direction        string     `json:"direction"`
	SourceAmount     wireAmount `json:"sourceAmount"`
	SpendingCategory string     `json:"spendingCategory"`
	CounterPartyName string     `json:"counterPartyName"`
	TransactionTime  string     `json:"transactionTime"`
	SettlementTime   string     `json:"settlementTime"`
}

type insightsResponse struct {
	Breakdown []insightEntry `json:"breakdown"`
}

type insightEntry struct {
	SpendingCategory string  `json:"spendingCategory"`
	NetSpend         float64 `json:"netSpend"`
	NetDirection     string  `json:"netDirection"`
}

type spacesResponse struct {
	SavingsGoals []savingsGoal `json:"savingsGoals"`
}

type savingsGoal struct {
	UID        string     `json:"savingsGoalUid"`
	Name       string     `json:"name"`
	Target     wireAmount `json:"target"`
	TotalSaved wireAmount `json:"totalSaved"`
}
