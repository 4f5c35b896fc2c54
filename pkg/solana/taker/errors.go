package taker

import (
	"fmt"

	"github.com/taker-protocol/taker-client/pkg/solana"
)

// ProgramError is a custom error returned by the program. Codes start at 300, the
// offset Anchor assigns to user defined errors.
type ProgramError uint32

const (
	// Not Authorized
	ErrNotAuthorized ProgramError = iota + 300

	// Contract address not correct
	ErrContractAddressNotCorrect

	// NFT listing address not correct
	ErrNFTListingAddressNotCorrect

	// NFT bid address not correct
	ErrNFTBidAddressNotCorrect

	// NFT loan address not correct
	ErrNFTLoanAddressNotCorrect

	// NFT overdrawn
	ErrNFTOverdrawn

	// Empty NFT Reserve
	ErrEmptyNFTReserve

	// NFT overtrade
	ErrNFTOvertrade

	// NFT bid amount larger than NFT supply
	ErrNFTOverbid

	// NFT borrow amount larger than bid amount
	ErrNFTBorrowExceedBid

	// NFT borrow already started
	ErrBorrowAlreadyStarted

	// Loan is liquidated
	ErrLoanLiquidated

	// Loan is not expired yet
	ErrLoanNotExpired

	// Loan record already exist
	ErrLoanAlreadyExist

	// Loan already finalized
	ErrLoanFinalized

	// Loan is not active
	ErrLoanNotActive
)

var programErrorMessages = map[ProgramError]string{
	ErrNotAuthorized:               "Not Authorized",
	ErrContractAddressNotCorrect:   "Contract address not correct",
	ErrNFTListingAddressNotCorrect: "NFT listing address not correct",
	ErrNFTBidAddressNotCorrect:     "NFT bid address not correct",
	ErrNFTLoanAddressNotCorrect:    "NFT loan address not correct",
	ErrNFTOverdrawn:                "NFT overdrawn",
	ErrEmptyNFTReserve:             "Empty NFT Reserve",
	ErrNFTOvertrade:                "NFT overtrade",
	ErrNFTOverbid:                  "NFT bid amount larger than NFT supply",
	ErrNFTBorrowExceedBid:          "NFT borrow amount larger than bid amount",
	ErrBorrowAlreadyStarted:        "NFT borrow already started",
	ErrLoanLiquidated:              "Loan is liquidated",
	ErrLoanNotExpired:              "Loan is not expired yet",
	ErrLoanAlreadyExist:            "Loan record already exist",
	ErrLoanFinalized:               "Loan already finalized",
	ErrLoanNotActive:               "Loan is not active",
}

func (e ProgramError) Error() string {
	if msg, ok := programErrorMessages[e]; ok {
		return fmt.Sprintf("taker error %d: %s", uint32(e), msg)
	}
	return fmt.Sprintf("taker error %d", uint32(e))
}

// GetProgramError maps a custom error code to a known ProgramError.
func GetProgramError(code solana.CustomError) (ProgramError, bool) {
	if code < 0 {
		return 0, false
	}
	e := ProgramError(code)
	_, ok := programErrorMessages[e]
	return e, ok
}

// ProgramErrorFrom extracts a known ProgramError from a failed transaction error.
func ProgramErrorFrom(err error) (ProgramError, bool) {
	code, ok := solana.GetCustomError(err)
	if !ok {
		return 0, false
	}
	return GetProgramError(code)
}
