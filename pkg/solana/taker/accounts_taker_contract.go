package taker

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/taker-protocol/taker-client/pkg/solana/binary"
)

const (
	minTakerContractAccountSize = (8 + // discriminator
		4 + // seed length
		1 + // bump_seed
		32 + // authority
		32 + // tkr_mint
		32 + // tai_mint
		32 + // dai_mint
		8 + // deposit_incentive
		8 + // max_loan_duration
		8 + // service_fee_rate
		8 + // interest_rate
		8) // total_num_loans
)

var TakerContractAccountDiscriminator = []byte{
	0x05, 0x7b, 0x16, 0x30, 0xfc, 0xb7, 0x3e, 0x1e,
}

// TakerContractAccount is the state written to the contract account by initialize.
type TakerContractAccount struct {
	Seed      []byte
	Bump      uint8
	Authority ed25519.PublicKey

	TkrMint ed25519.PublicKey
	TaiMint ed25519.PublicKey
	DaiMint ed25519.PublicKey

	DepositIncentive uint64
	MaxLoanDuration  int64
	// Basis points.
	ServiceFeeRate uint64
	// Basis points.
	InterestRate  uint64
	TotalNumLoans uint64
}

func (obj *TakerContractAccount) Marshal() []byte {
	data := make([]byte, minTakerContractAccountSize+len(obj.Seed))

	var offset int
	putDiscriminator(data, TakerContractAccountDiscriminator, &offset)
	binary.PutBytes(data[offset:], obj.Seed, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)
	binary.PutKey32(data[offset:], obj.Authority, &offset)
	binary.PutKey32(data[offset:], obj.TkrMint, &offset)
	binary.PutKey32(data[offset:], obj.TaiMint, &offset)
	binary.PutKey32(data[offset:], obj.DaiMint, &offset)
	binary.PutUint64(data[offset:], obj.DepositIncentive, &offset)
	binary.PutInt64(data[offset:], obj.MaxLoanDuration, &offset)
	binary.PutUint64(data[offset:], obj.ServiceFeeRate, &offset)
	binary.PutUint64(data[offset:], obj.InterestRate, &offset)
	binary.PutUint64(data[offset:], obj.TotalNumLoans, &offset)

	return data
}

func (obj *TakerContractAccount) Unmarshal(data []byte) error {
	if len(data) < minTakerContractAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, TakerContractAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	if err := binary.GetBytes(data[offset:], &obj.Seed, &offset); err != nil {
		return ErrInvalidAccountData
	}
	if len(data) < minTakerContractAccountSize+len(obj.Seed) {
		return ErrInvalidAccountData
	}

	binary.GetUint8(data[offset:], &obj.Bump, &offset)
	binary.GetKey32(data[offset:], &obj.Authority, &offset)
	binary.GetKey32(data[offset:], &obj.TkrMint, &offset)
	binary.GetKey32(data[offset:], &obj.TaiMint, &offset)
	binary.GetKey32(data[offset:], &obj.DaiMint, &offset)
	binary.GetUint64(data[offset:], &obj.DepositIncentive, &offset)
	binary.GetInt64(data[offset:], &obj.MaxLoanDuration, &offset)
	binary.GetUint64(data[offset:], &obj.ServiceFeeRate, &offset)
	binary.GetUint64(data[offset:], &obj.InterestRate, &offset)
	binary.GetUint64(data[offset:], &obj.TotalNumLoans, &offset)

	return nil
}

func (obj *TakerContractAccount) String() string {
	return fmt.Sprintf(
		"TakerContract{seed=%s,bump=%d,authority=%s,tkr_mint=%s,tai_mint=%s,dai_mint=%s,deposit_incentive=%d,max_loan_duration=%d,service_fee_rate=%d,interest_rate=%d,total_num_loans=%d}",
		base58.Encode(obj.Seed),
		obj.Bump,
		base58.Encode(obj.Authority),
		base58.Encode(obj.TkrMint),
		base58.Encode(obj.TaiMint),
		base58.Encode(obj.DaiMint),
		obj.DepositIncentive,
		obj.MaxLoanDuration,
		obj.ServiceFeeRate,
		obj.InterestRate,
		obj.TotalNumLoans,
	)
}
