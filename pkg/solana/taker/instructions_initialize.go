package taker

import (
	"bytes"
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"

	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/binary"
)

var initializeInstructionDiscriminator = []byte{
	0xaf, 0xaf, 0x6d, 0x1f, 0x0d, 0x98, 0x9b, 0xed,
}

// AccountLayout selects which named accounts the initialize instruction carries.
//
// Two layouts of the instruction are in use against deployed versions of the
// program. AccountLayoutFull passes the contract's token accounts and the token
// program. AccountLayoutMintsOnly passes the mints and the rent sysvar only.
type AccountLayout string

const (
	AccountLayoutFull      AccountLayout = "full"
	AccountLayoutMintsOnly AccountLayout = "mints-only"
)

func ParseAccountLayout(s string) (AccountLayout, error) {
	switch AccountLayout(strings.ToLower(strings.TrimSpace(s))) {
	case "", AccountLayoutFull:
		return AccountLayoutFull, nil
	case AccountLayoutMintsOnly:
		return AccountLayoutMintsOnly, nil
	default:
		return "", errors.Errorf("unknown account layout %q", s)
	}
}

type InitializeInstructionArgs struct {
	Seed []byte
}

type InitializeInstructionAccounts struct {
	Contract  ed25519.PublicKey
	Authority ed25519.PublicKey

	TkrMint  ed25519.PublicKey
	TkrToken ed25519.PublicKey
	TaiMint  ed25519.PublicKey
	TaiToken ed25519.PublicKey
	DaiMint  ed25519.PublicKey
	DaiToken ed25519.PublicKey
}

// Validate checks that every account the layout names is set, reporting all of the
// missing ones at once.
func (a *InitializeInstructionAccounts) Validate(layout AccountLayout) error {
	type named struct {
		name string
		key  ed25519.PublicKey
	}

	required := []named{
		{"contractAccount", a.Contract},
		{"authority", a.Authority},
		{"tkrMint", a.TkrMint},
		{"taiMint", a.TaiMint},
		{"daiMint", a.DaiMint},
	}
	switch layout {
	case AccountLayoutFull:
		required = append(required,
			named{"tkrToken", a.TkrToken},
			named{"taiToken", a.TaiToken},
			named{"daiToken", a.DaiToken},
		)
	case AccountLayoutMintsOnly:
	default:
		return errors.Errorf("unknown account layout %q", layout)
	}

	var missing []string
	for _, account := range required {
		if len(account.key) != ed25519.PublicKeySize {
			missing = append(missing, account.name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrap(ErrMissingAccount, strings.Join(missing, ", "))
	}
	return nil
}

// NewInitializeInstruction builds initialize with the full account layout:
//
//	0. [WRITE] contractAccount
//	1. [WRITE, SIGNER] authority
//	2. [] tkrMint
//	3. [WRITE] tkrToken
//	4. [] taiMint
//	5. [WRITE] taiToken
//	6. [] daiMint
//	7. [WRITE] daiToken
//	8. [] splProgram
//	9. [] rent
func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: newInitializeInstructionData(args),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Contract,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TkrMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TkrToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TaiMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TaiToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.DaiMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.DaiToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

// NewInitializeMintsOnlyInstruction builds initialize with the reduced account layout:
//
//	0. [WRITE] contractAccount
//	1. [WRITE, SIGNER] authority
//	2. [] tkrMint
//	3. [] taiMint
//	4. [] daiMint
//	5. [] rent
func NewInitializeMintsOnlyInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: newInitializeInstructionData(args),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Contract,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TkrMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TaiMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.DaiMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

// NewInitializeInstructionForLayout validates the accounts against the layout and
// builds the matching instruction.
func NewInitializeInstructionForLayout(
	layout AccountLayout,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) (solana.Instruction, error) {
	if err := accounts.Validate(layout); err != nil {
		return solana.Instruction{}, err
	}

	if layout == AccountLayoutMintsOnly {
		return NewInitializeMintsOnlyInstruction(accounts, args), nil
	}
	return NewInitializeInstruction(accounts, args), nil
}

func newInitializeInstructionData(args *InitializeInstructionArgs) []byte {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+4+len(args.Seed))

	putDiscriminator(data, initializeInstructionDiscriminator, &offset)
	binary.PutBytes(data[offset:], args.Seed, &offset)

	return data
}

// InitializeInstructionFromBinary decodes the arguments of an initialize instruction.
func InitializeInstructionFromBinary(data []byte) (*InitializeInstructionArgs, error) {
	if len(data) < discriminatorSize {
		return nil, ErrInvalidInstructionData
	}

	var offset int
	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, initializeInstructionDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	var args InitializeInstructionArgs
	if err := binary.GetBytes(data[offset:], &args.Seed, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}
