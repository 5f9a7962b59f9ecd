package token

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrAlreadyInUse             = host.NewError(6600, host.KindValidation, "token: account or mint already initialized")
	ErrUninitializedState       = host.NewError(6601, host.KindValidation, "token: account or mint not initialized")
	ErrMintMismatch             = host.NewError(6602, host.KindValidation, "token: account mint does not match")
	ErrOwnerMismatch            = host.NewError(6603, host.KindAuthorization, "token: owner or authority does not match")
	ErrInsufficientFunds        = host.NewError(6604, host.KindNumeric, "token: insufficient funds")
	ErrOverflow                 = host.NewError(6605, host.KindNumeric, "token: amount overflow")
	ErrInvalidAccountData       = host.NewError(6606, host.KindValidation, "token: invalid account data")
	ErrFixedSupply              = host.NewError(6607, host.KindAuthorization, "token: mint has no authority")
	ErrInvalidInstruction       = host.NewError(6608, host.KindValidation, "token: invalid instruction")
	ErrInvalidAssociatedAddress = host.NewError(6610, host.KindValidation, "associated token: address does not match seeds")
	ErrAssociatedAccountExists  = host.NewError(6611, host.KindValidation, "associated token: account already exists")
)
