package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AccountMetaDTO struct {
	Address    string `json:"address"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// SignatureDTO is a base58 ed25519 signature over the instruction message.
type SignatureDTO struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

type SubmitInstructionRequest struct {
	Accounts   []AccountMetaDTO `json:"accounts"`
	Data       string           `json:"data"`
	Signatures []SignatureDTO   `json:"signatures"`
}

type EventDTO struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	PartitionKey string          `json:"partition_key"`
	OccurredAt   string          `json:"occurred_at"`
	Data         json.RawMessage `json:"data"`
}

type SubmitInstructionResponse struct {
	Status      string     `json:"status"`
	Replayed    bool       `json:"replayed,omitempty"`
	Instruction string     `json:"instruction"`
	Events      []EventDTO `json:"events"`
}

type MarketplaceDTO struct {
	Address              string `json:"address"`
	Authority            string `json:"authority"`
	FeePercentage        uint8  `json:"fee_percentage"`
	TotalRevenue         uint64 `json:"total_revenue"`
	TotalModulesSold     uint64 `json:"total_modules_sold"`
	PlatformFeeRevenue   uint64 `json:"platform_fee_revenue"`
	PlatformFeeCollected uint64 `json:"platform_fee_collected"`
}

type ModuleDTO struct {
	Address          string `json:"address"`
	Creator          string `json:"creator"`
	Marketplace      string `json:"marketplace"`
	Mint             string `json:"mint"`
	Price            uint64 `json:"price"`
	IsFreeIssuance   bool   `json:"is_free_issuance"`
	URI              string `json:"uri,omitempty"`
	TotalSales       uint64 `json:"total_sales"`
	TotalRevenue     uint64 `json:"total_revenue"`
	CreatorRevenue   uint64 `json:"creator_revenue"`
	CreatorCollected uint64 `json:"creator_collected"`
}

type MintDTO struct {
	Address   string `json:"address"`
	Authority string `json:"authority"`
	Decimals  uint8  `json:"decimals"`
}

type RevenueAccountDTO struct {
	Address       string `json:"address"`
	Owner         string `json:"owner"`
	Marketplace   string `json:"marketplace"`
	Source        string `json:"source"`
	Collected     uint64 `json:"collected"`
	Collections   uint64 `json:"collections"`
	LastCollected uint64 `json:"last_collected"`
}

type TokenBalanceDTO struct {
	Account  string `json:"account"`
	Owner    string `json:"owner"`
	Mint     string `json:"mint"`
	Amount   uint64 `json:"amount"`
	UIAmount string `json:"ui_amount"`
}

type CreateAccountRequest struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Space    int    `json:"space"`
}

type AccountDTO struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Space    int    `json:"space"`
}

type MarketplaceResponse struct {
	Status string         `json:"status"`
	Data   MarketplaceDTO `json:"data"`
}

type ModuleResponse struct {
	Status string    `json:"status"`
	Data   ModuleDTO `json:"data"`
}

type MintResponse struct {
	Status string  `json:"status"`
	Data   MintDTO `json:"data"`
}

type RevenueAccountResponse struct {
	Status string            `json:"status"`
	Data   RevenueAccountDTO `json:"data"`
}

type TokenBalanceResponse struct {
	Status string          `json:"status"`
	Data   TokenBalanceDTO `json:"data"`
}

type CreateAccountResponse struct {
	Status string     `json:"status"`
	Data   AccountDTO `json:"data"`
}
