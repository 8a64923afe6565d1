package httpadapter

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/application/commands"
	"metamarket/contexts/finance-core/marketplace-program/application/queries"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	httptransport "metamarket/contexts/finance-core/marketplace-program/transport/http"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

type Handler struct {
	ProgramID          entities.Pubkey
	ProcessInstruction commands.ProcessInstructionUseCase
	CreateAccount      commands.CreateAccountUseCase
	GetMarketplace     queries.GetMarketplaceUseCase
	GetModule          queries.GetModuleUseCase
	GetMint            queries.GetMintUseCase
	GetRevenueAccount  queries.GetRevenueAccountUseCase
	GetBalance         queries.GetBalanceUseCase
	Logger             *slog.Logger
}

// SubmitInstructionHandler godoc
// @Summary Submit a program instruction
// @Description Decodes, authorizes and executes one marketplace or token instruction. Only accounts with a valid ed25519 signature over the instruction message count as signers.
// @Tags marketplace-program
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body httptransport.SubmitInstructionRequest true "Instruction payload"
// @Success 200 {object} httptransport.SubmitInstructionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/instructions [post]
func (h Handler) SubmitInstructionHandler(
	ctx context.Context,
	idempotencyKey string,
	traceID string,
	req httptransport.SubmitInstructionRequest,
) (httptransport.SubmitInstructionResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return httptransport.SubmitInstructionResponse{}, fmt.Errorf("%w: data must be base64", domainerrors.ErrMalformedInstruction)
	}
	metas, err := parseAccountMetas(req.Accounts)
	if err != nil {
		return httptransport.SubmitInstructionResponse{}, err
	}
	signatures, err := parseSignatures(req.Signatures)
	if err != nil {
		return httptransport.SubmitInstructionResponse{}, err
	}
	metas = verifySigners(h.ProgramID, metas, data, signatures, logger, traceID)

	result, err := h.ProcessInstruction.Execute(ctx, commands.ProcessInstructionCommand{
		Accounts:       metas,
		Data:           data,
		IdempotencyKey: idempotencyKey,
		TraceID:        traceID,
	})
	if err != nil {
		logger.Warn("submit instruction failed",
			"event", "http_submit_instruction_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"accounts", len(metas),
			"error", err.Error(),
		)
		return httptransport.SubmitInstructionResponse{}, err
	}

	resp := httptransport.SubmitInstructionResponse{
		Status:      "success",
		Replayed:    result.Replayed,
		Instruction: result.Instruction,
		Events:      make([]httptransport.EventDTO, 0, len(result.Events)),
	}
	for _, event := range result.Events {
		resp.Events = append(resp.Events, httptransport.EventDTO{
			EventID:      event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			OccurredAt:   event.OccurredAt.UTC().Format(time.RFC3339),
			Data:         event.Data,
		})
	}
	return resp, nil
}

// CreateAccountHandler godoc
// @Summary Allocate an account
// @Description Reserves a zeroed account with the given owner, balance and space.
// @Tags marketplace-program
// @Accept json
// @Produce json
// @Param request body httptransport.CreateAccountRequest true "Allocation request"
// @Success 201 {object} httptransport.CreateAccountResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/accounts [post]
func (h Handler) CreateAccountHandler(
	ctx context.Context,
	req httptransport.CreateAccountRequest,
) (httptransport.CreateAccountResponse, error) {
	address, err := entities.ParsePubkey(req.Address)
	if err != nil {
		return httptransport.CreateAccountResponse{}, err
	}
	owner := h.ProgramID
	if strings.TrimSpace(req.Owner) != "" {
		if owner, err = entities.ParsePubkey(req.Owner); err != nil {
			return httptransport.CreateAccountResponse{}, err
		}
	}
	account, err := h.CreateAccount.Execute(ctx, commands.CreateAccountCommand{
		Address:  address,
		Owner:    owner,
		Lamports: req.Lamports,
		Space:    req.Space,
	})
	if err != nil {
		return httptransport.CreateAccountResponse{}, err
	}
	return httptransport.CreateAccountResponse{
		Status: "success",
		Data: httptransport.AccountDTO{
			Address:  account.Address.String(),
			Owner:    account.Owner.String(),
			Lamports: account.Lamports,
			Space:    len(account.Data),
		},
	}, nil
}

// GetMarketplaceHandler godoc
// @Summary Get marketplace
// @Tags marketplace-program
// @Produce json
// @Param address path string true "Marketplace address (base58)"
// @Success 200 {object} httptransport.MarketplaceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/marketplaces/{address} [get]
func (h Handler) GetMarketplaceHandler(ctx context.Context, rawAddress string) (httptransport.MarketplaceResponse, error) {
	address, err := entities.ParsePubkey(rawAddress)
	if err != nil {
		return httptransport.MarketplaceResponse{}, err
	}
	marketplace, err := h.GetMarketplace.Execute(ctx, queries.GetRecordQuery{Address: address})
	if err != nil {
		return httptransport.MarketplaceResponse{}, err
	}
	return httptransport.MarketplaceResponse{
		Status: "success",
		Data: httptransport.MarketplaceDTO{
			Address:              address.String(),
			Authority:            marketplace.Authority.String(),
			FeePercentage:        marketplace.FeePercentage,
			TotalRevenue:         marketplace.TotalRevenue,
			TotalModulesSold:     marketplace.TotalModulesSold,
			PlatformFeeRevenue:   marketplace.PlatformFeeRevenue,
			PlatformFeeCollected: marketplace.PlatformFeeCollected,
		},
	}, nil
}

// GetModuleHandler godoc
// @Summary Get module listing
// @Tags marketplace-program
// @Produce json
// @Param address path string true "Module address (base58)"
// @Success 200 {object} httptransport.ModuleResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/modules/{address} [get]
func (h Handler) GetModuleHandler(ctx context.Context, rawAddress string) (httptransport.ModuleResponse, error) {
	address, err := entities.ParsePubkey(rawAddress)
	if err != nil {
		return httptransport.ModuleResponse{}, err
	}
	module, err := h.GetModule.Execute(ctx, queries.GetRecordQuery{Address: address})
	if err != nil {
		return httptransport.ModuleResponse{}, err
	}
	return httptransport.ModuleResponse{
		Status: "success",
		Data: httptransport.ModuleDTO{
			Address:          address.String(),
			Creator:          module.Creator.String(),
			Marketplace:      module.Marketplace.String(),
			Mint:             module.Mint.String(),
			Price:            module.Price,
			IsFreeIssuance:   module.IsFreeIssuance,
			URI:              module.URI,
			TotalSales:       module.TotalSales,
			TotalRevenue:     module.TotalRevenue,
			CreatorRevenue:   module.CreatorRevenue,
			CreatorCollected: module.CreatorCollected,
		},
	}, nil
}

// GetMintHandler godoc
// @Summary Get settlement mint
// @Tags marketplace-program
// @Produce json
// @Param address path string true "Mint address (base58)"
// @Success 200 {object} httptransport.MintResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/mints/{address} [get]
func (h Handler) GetMintHandler(ctx context.Context, rawAddress string) (httptransport.MintResponse, error) {
	address, err := entities.ParsePubkey(rawAddress)
	if err != nil {
		return httptransport.MintResponse{}, err
	}
	mint, err := h.GetMint.Execute(ctx, queries.GetRecordQuery{Address: address})
	if err != nil {
		return httptransport.MintResponse{}, err
	}
	return httptransport.MintResponse{
		Status: "success",
		Data: httptransport.MintDTO{
			Address:   address.String(),
			Authority: mint.Authority.String(),
			Decimals:  mint.Decimals,
		},
	}, nil
}

// GetRevenueAccountHandler godoc
// @Summary Get revenue account
// @Tags marketplace-program
// @Produce json
// @Param address path string true "Revenue account address (base58)"
// @Success 200 {object} httptransport.RevenueAccountResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/revenue-accounts/{address} [get]
func (h Handler) GetRevenueAccountHandler(ctx context.Context, rawAddress string) (httptransport.RevenueAccountResponse, error) {
	address, err := entities.ParsePubkey(rawAddress)
	if err != nil {
		return httptransport.RevenueAccountResponse{}, err
	}
	revenue, err := h.GetRevenueAccount.Execute(ctx, queries.GetRecordQuery{Address: address})
	if err != nil {
		return httptransport.RevenueAccountResponse{}, err
	}
	return httptransport.RevenueAccountResponse{
		Status: "success",
		Data: httptransport.RevenueAccountDTO{
			Address:       address.String(),
			Owner:         revenue.Owner.String(),
			Marketplace:   revenue.Marketplace.String(),
			Source:        revenue.Source.String(),
			Collected:     revenue.Collected,
			Collections:   revenue.Collections,
			LastCollected: revenue.LastCollected,
		},
	}, nil
}

// GetBalanceHandler godoc
// @Summary Get ledger token balance
// @Tags marketplace-program
// @Produce json
// @Param address path string true "Token account address (base58)"
// @Success 200 {object} httptransport.TokenBalanceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ledger/accounts/{address} [get]
func (h Handler) GetBalanceHandler(ctx context.Context, rawAddress string) (httptransport.TokenBalanceResponse, error) {
	address, err := entities.ParsePubkey(rawAddress)
	if err != nil {
		return httptransport.TokenBalanceResponse{}, err
	}
	balance, err := h.GetBalance.Execute(ctx, queries.GetBalanceQuery{Account: address})
	if err != nil {
		return httptransport.TokenBalanceResponse{}, err
	}
	return httptransport.TokenBalanceResponse{
		Status: "success",
		Data: httptransport.TokenBalanceDTO{
			Account:  balance.Account.String(),
			Owner:    balance.Owner.String(),
			Mint:     balance.Mint.String(),
			Amount:   balance.Amount,
			UIAmount: uiAmount(balance.Amount),
		},
	}, nil
}

func parseAccountMetas(items []httptransport.AccountMetaDTO) ([]entities.AccountMeta, error) {
	metas := make([]entities.AccountMeta, 0, len(items))
	for i, item := range items {
		address, err := entities.ParsePubkey(item.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d: %v", domainerrors.ErrMalformedInstruction, i, err)
		}
		metas = append(metas, entities.AccountMeta{
			Address:    address,
			IsSigner:   item.IsSigner,
			IsWritable: item.IsWritable,
		})
	}
	return metas, nil
}

func parseSignatures(items []httptransport.SignatureDTO) (map[entities.Pubkey][]byte, error) {
	signatures := make(map[entities.Pubkey][]byte, len(items))
	for _, item := range items {
		signer, err := entities.ParsePubkey(item.Signer)
		if err != nil {
			return nil, fmt.Errorf("%w: signer: %v", domainerrors.ErrMissingSignature, err)
		}
		signature, err := base58.Decode(item.Signature)
		if err != nil || len(signature) != ed25519.SignatureSize {
			return nil, fmt.Errorf("%w: signature for %s is not a base58 ed25519 signature",
				domainerrors.ErrMissingSignature, signer)
		}
		signatures[signer] = signature
	}
	return signatures, nil
}

// verifySigners keeps IsSigner only for accounts whose key produced a valid
// signature over the message the caller asked to execute.
func verifySigners(
	programID entities.Pubkey,
	metas []entities.AccountMeta,
	data []byte,
	signatures map[entities.Pubkey][]byte,
	logger *slog.Logger,
	traceID string,
) []entities.AccountMeta {
	message := entities.SigningMessage(programID, metas, data)
	verified := make([]entities.AccountMeta, len(metas))
	for i, meta := range metas {
		verified[i] = meta
		if !meta.IsSigner {
			continue
		}
		signature, ok := signatures[meta.Address]
		verified[i].IsSigner = ok && ed25519.Verify(ed25519.PublicKey(meta.Address[:]), message, signature)
		if !verified[i].IsSigner {
			reason := "invalid_signature"
			if !ok {
				reason = "missing_signature"
			}
			logger.Debug("signer flag dropped",
				"event", "marketplace_program_signer_unverified",
				"module", application.ModuleName,
				"layer", "transport",
				"trace_id", traceID,
				"account_index", i,
				"signer", meta.Address.String(),
				"reason", reason,
			)
		}
	}
	return verified
}

func uiAmount(amount uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(entities.SettlementDecimals)).
		StringFixed(int32(entities.SettlementDecimals))
}
