package managerset

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

// InstructionSetManagerSet installs a set and advances the chain's index.
const InstructionSetManagerSet uint8 = 0

// SetManagerSetArgs precedes the trailing set bytes.
type SetManagerSetArgs struct {
	ChainID uint16
	Padding [2]uint8
	Index   uint32
}

// SetManagerSetInstruction builds SetManagerSet for data.
func SetManagerSetInstruction(program, payer solana.PublicKey, chainID uint16, index uint32, data []byte) (solana.Instruction, error) {
	indexAddr, _ := IndexAddress(program, chainID)
	setAddr, _ := SetAddress(program, chainID, index)
	return common.Instruction(program, InstructionSetManagerSet, &SetManagerSetArgs{ChainID: chainID, Index: index}, data,
		common.WritableSigner(payer),
		common.Writable(indexAddr),
		common.Writable(setAddr),
	)
}

// Program is the delegated manager set program.
type Program struct {
	id solana.PublicKey
}

// NewProgram returns the program deployed at id.
func NewProgram(id solana.PublicKey) *Program { return &Program{id: id} }

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Name() string { return "delegated_manager_set" }

func (p *Program) InstructionName(data []byte) string {
	if len(data) > 0 && data[0] == InstructionSetManagerSet {
		return "set_manager_set"
	}
	return ""
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	if disc != InstructionSetManagerSet {
		return fmt.Errorf("%w: %d", ErrInvalidInstruction, disc)
	}
	var args SetManagerSetArgs
	setData, err := common.DecodeBody(body, &args)
	if err != nil {
		return err
	}
	return p.setManagerSet(ctx, accounts, args, setData)
}

func (p *Program) setManagerSet(ctx *host.Context, accounts []*host.AccountInfo, args SetManagerSetArgs, setData []byte) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, indexAcc, setAcc := accounts[0], accounts[1], accounts[2]

	indexAddr, indexBump := IndexAddress(p.id, args.ChainID)
	if !indexAddr.Equals(indexAcc.Key) {
		return ErrInvalidIndexPDA
	}
	setAddr, setBump := SetAddress(p.id, args.ChainID, args.Index)
	if !setAddr.Equals(setAcc.Key) {
		return ErrInvalidSetPDA
	}
	if _, err := ParseSetData(setData); err != nil {
		return err
	}
	if !setAcc.IsEmpty() {
		return ErrSetExists
	}

	if indexAcc.IsEmpty() {
		seeds := common.SignerSeeds(indexBump, indexSeed, chainSeed(args.ChainID))
		if err := ctx.CreateAccount(payer, indexAcc, IndexAccountSize, p.id, seeds); err != nil {
			return err
		}
	} else {
		current, err := ReadIndex(p.id, indexAcc)
		if err != nil {
			return err
		}
		if args.Index <= current.CurrentIndex {
			return fmt.Errorf("%w: %d <= %d", ErrIndexNotIncreasing, args.Index, current.CurrentIndex)
		}
	}

	seeds := common.SignerSeeds(setBump, setSeed, chainSeed(args.ChainID), indexSeedBytes(args.Index))
	if err := ctx.CreateAccount(payer, setAcc, SetAccountSize, p.id, seeds); err != nil {
		return err
	}
	setRecord, err := encodeRecord(SetDiscriminator, &ManagerSet{
		ManagerChainID: args.ChainID,
		Index:          args.Index,
		ManagerSet:     setData,
	})
	if err != nil {
		return err
	}
	copy(setAcc.Data(), setRecord)

	indexRecord, err := encodeRecord(IndexDiscriminator, &ManagerSetIndex{
		ManagerChainID: args.ChainID,
		CurrentIndex:   args.Index,
	})
	if err != nil {
		return err
	}
	copy(indexAcc.Data(), indexRecord)
	ctx.Logf("manager set %d installed for chain %d", args.Index, args.ChainID)
	return nil
}
