package dto

type AdminWalletBalanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type AdminWalletHistoryResponse struct {
	UserID  int64                 `json:"user_id"`
	History []LedgerEntryResponse `json:"history"`
}

type AdminWalletActionRequest struct {
	UserID int64  `json:"user_id"`
	Amount int64  `json:"amount"`
	Action string `json:"action"`
	Remark string `json:"remark"`
}

type AdminWalletActionResponse struct {
	OK     bool                   `json:"ok"`
	Entry  LedgerEntryResponse    `json:"entry"`
	Wallet WalletSnapshotResponse `json:"wallet"`
}
