package taker

import (
	"crypto/ed25519"

	"github.com/taker-protocol/taker-client/pkg/solana"
)

// GetContractAddress returns the contract account owned by an authority, which is
// the program address of seeds [authority].
func GetContractAddress(authority ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		authority,
	)
}

type GetNFTListingAddressArgs struct {
	Mint   ed25519.PublicKey
	Wallet ed25519.PublicKey
}

// GetNFTListingAddress returns the listing record of a wallet's deposit of an NFT mint.
func GetNFTListingAddress(args *GetNFTListingAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		args.Mint,
		args.Wallet,
	)
}
