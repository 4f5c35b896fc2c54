package system

import (
	"github.com/taker-protocol/taker-client/pkg/solana"
)

// ProgramKey is the address of the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

// IsSystemOwned reports whether an account is owned by the system program, which is
// the case for plain wallets.
func IsSystemOwned(info solana.AccountInfo) bool {
	return info.Owner.Equal(ProgramKey)
}
