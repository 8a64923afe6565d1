// Package marketplaceprogram contains the on-chain style marketplace program:
// an instruction decoder, an authorization guard, the marketplace state
// machine and the settlement token authority.
//
// Program state lives in host accounts reached through ports.AccountStore.
// Token balances live behind ports.LedgerService and are never stored in
// program records.
package marketplaceprogram
