package dto

import "time"

type LedgerEntryResponse struct {
	At     time.Time `json:"at"`
	Amount int64     `json:"amount"`
	Kind   string    `json:"kind"`
	Remark string    `json:"remark,omitempty"`
	Actor  string    `json:"actor,omitempty"`
}

type WalletSnapshotResponse struct {
	Balance   int64                 `json:"balance"`
	History   []LedgerEntryResponse `json:"history"`
	FetchedAt time.Time             `json:"fetched_at"`
	Cached    bool                  `json:"cached"`
}
