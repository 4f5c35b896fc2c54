package taker

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/taker-protocol/taker-client/pkg/solana/system"
	"github.com/taker-protocol/taker-client/pkg/solana/token"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidEventData       = errors.New("unexpected event data")
	ErrMissingAccount         = errors.New("missing instruction account")
	ErrInvalidIDL             = errors.New("invalid idl")
)

// Address of the deployed taker program. Overridden with SetProgramID when the
// program is deployed elsewhere.
var (
	PROGRAM_ADDRESS = mustBase58Decode("91aE2UGTmGfy9FVCPB9PFoNbEokDoPBKh8nitW4QPwxp")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = system.ProgramKey
	SPL_TOKEN_PROGRAM_ID = token.ProgramKey

	SYSVAR_RENT_PUBKEY = system.RentSysVar
)

// SetProgramID points the package at a different deployment of the program.
//
// It is not safe to call concurrently with instruction or address construction.
func SetProgramID(program ed25519.PublicKey) error {
	if len(program) != ed25519.PublicKeySize {
		return ErrInvalidProgram
	}

	PROGRAM_ADDRESS = append([]byte{}, program...)
	PROGRAM_ID = ed25519.PublicKey(PROGRAM_ADDRESS)
	return nil
}

type idl struct {
	Name     string `json:"name"`
	Metadata struct {
		Address string `json:"address"`
	} `json:"metadata"`
}

// LoadProgramIDFromIDL extracts the deployed program address from an Anchor IDL
// document, as written to target/idl/taker.json by a deploy.
func LoadProgramIDFromIDL(data []byte) (ed25519.PublicKey, error) {
	var doc idl
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrInvalidIDL, err.Error())
	}
	if doc.Metadata.Address == "" {
		return nil, errors.Wrap(ErrInvalidIDL, "metadata.address not set")
	}

	decoded, err := base58.Decode(doc.Metadata.Address)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidProgram, "bad idl address %q", doc.Metadata.Address)
	}
	return decoded, nil
}
