// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package builtin lists the methods of the builtin actors. Only method
// numbers and names are covered, the behavior of the actors is implemented
// elsewhere.
package builtin

import (
	"reflect"
	"sort"
)

// Actor names a builtin actor type.
type Actor string

const (
	Account  Actor = "account"
	DataCap  Actor = "datacap"
	Init     Actor = "init"
	Market   Actor = "storagemarket"
	PayCh    Actor = "paymentchannel"
	Reward   Actor = "reward"
	System   Actor = "system"
	VerifReg Actor = "verifiedregistry"
	EVM      Actor = "evm"
)

const MethodSend MethodNum = 0
const MethodConstructor MethodNum = 1

var MethodsAccount = struct {
	Constructor           MethodNum
	PubkeyAddress         MethodNum
	AuthenticateMessage   MethodNum
	UniversalReceiverHook MethodNum
}{
	MethodConstructor,
	2,
	MethodHash("AuthenticateMessage"),
	MethodHash("Receive"),
}

var MethodsDataCap = struct {
	Constructor       MethodNum
	Mint              MethodNum
	Destroy           MethodNum
	Name              MethodNum
	Symbol            MethodNum
	TotalSupply       MethodNum
	Balance           MethodNum
	Transfer          MethodNum
	TransferFrom      MethodNum
	IncreaseAllowance MethodNum
	DecreaseAllowance MethodNum
	RevokeAllowance   MethodNum
	Burn              MethodNum
	BurnFrom          MethodNum
	Allowance         MethodNum
	Granularity       MethodNum
}{
	MethodConstructor,
	MethodHash("Mint"),
	MethodHash("Destroy"),
	MethodHash("Name"),
	MethodHash("Symbol"),
	MethodHash("TotalSupply"),
	MethodHash("Balance"),
	MethodHash("Transfer"),
	MethodHash("TransferFrom"),
	MethodHash("IncreaseAllowance"),
	MethodHash("DecreaseAllowance"),
	MethodHash("RevokeAllowance"),
	MethodHash("Burn"),
	MethodHash("BurnFrom"),
	MethodHash("Allowance"),
	MethodHash("Granularity"),
}

var MethodsInit = struct {
	Constructor MethodNum
	Exec        MethodNum
	Exec4       MethodNum
}{MethodConstructor, 2, 3}

var MethodsMarket = struct {
	Constructor               MethodNum
	AddBalance                MethodNum
	WithdrawBalance           MethodNum
	PublishStorageDeals       MethodNum
	VerifyDealsForActivation  MethodNum
	BatchActivateDeals        MethodNum
	OnMinerSectorsTerminate   MethodNum
	ComputeDataCommitment     MethodNum
	CronTick                  MethodNum
	GetBalance                MethodNum
	GetDealDataCommitment     MethodNum
	GetDealClient             MethodNum
	GetDealProvider           MethodNum
	GetDealLabel              MethodNum
	GetDealTerm               MethodNum
	GetDealTotalPrice         MethodNum
	GetDealClientCollateral   MethodNum
	GetDealProviderCollateral MethodNum
	GetDealVerified           MethodNum
	GetDealActivation         MethodNum
}{
	MethodConstructor,
	2,
	3,
	4,
	5,
	6,
	7,
	8,
	9,
	MethodHash("GetBalance"),
	MethodHash("GetDealDataCommitment"),
	MethodHash("GetDealClient"),
	MethodHash("GetDealProvider"),
	MethodHash("GetDealLabel"),
	MethodHash("GetDealTerm"),
	MethodHash("GetDealTotalPrice"),
	MethodHash("GetDealClientCollateral"),
	MethodHash("GetDealProviderCollateral"),
	MethodHash("GetDealVerified"),
	MethodHash("GetDealActivation"),
}

var MethodsPayCh = struct {
	Constructor        MethodNum
	UpdateChannelState MethodNum
	Settle             MethodNum
	Collect            MethodNum
}{MethodConstructor, 2, 3, 4}

var MethodsReward = struct {
	Constructor      MethodNum
	AwardBlockReward MethodNum
	ThisEpochReward  MethodNum
	UpdateNetworkKPI MethodNum
}{MethodConstructor, 2, 3, 4}

var MethodsSystem = struct {
	Constructor MethodNum
}{MethodConstructor}

var MethodsVerifReg = struct {
	Constructor                 MethodNum
	AddVerifier                 MethodNum
	RemoveVerifier              MethodNum
	AddVerifiedClient           MethodNum
	RemoveVerifiedClientDataCap MethodNum
	RemoveExpiredAllocations    MethodNum
	ClaimAllocations            MethodNum
	GetClaims                   MethodNum
	ExtendClaimTerms            MethodNum
	RemoveExpiredClaims         MethodNum
	UniversalReceiverHook       MethodNum
}{
	MethodConstructor,
	2,
	3,
	4,
	7,
	8,
	9,
	10,
	11,
	12,
	MethodHash("Receive"),
}

var MethodsEVM = struct {
	Constructor            MethodNum
	Resurrect              MethodNum
	GetBytecode            MethodNum
	GetBytecodeHash        MethodNum
	GetStorageAt           MethodNum
	InvokeContractDelegate MethodNum
	InvokeContract         MethodNum
}{
	MethodConstructor,
	2,
	3,
	4,
	5,
	6,
	MethodHash("InvokeEVM"),
}

// Method is an entry of a method table.
type Method struct {
	Name string
	Num  MethodNum
}

// Methods maps each builtin actor to its methods ordered by number.
var Methods = map[Actor][]Method{
	Account:  methodTable(MethodsAccount),
	DataCap:  methodTable(MethodsDataCap),
	Init:     methodTable(MethodsInit),
	Market:   methodTable(MethodsMarket),
	PayCh:    methodTable(MethodsPayCh),
	Reward:   methodTable(MethodsReward),
	System:   methodTable(MethodsSystem),
	VerifReg: methodTable(MethodsVerifReg),
	EVM:      methodTable(MethodsEVM),
}

// methodTable lists the fields of a method struct.
func methodTable(methods any) []Method {
	value := reflect.ValueOf(methods)
	res := make([]Method, 0, value.NumField())
	for i := 0; i < value.NumField(); i++ {
		res = append(res, Method{
			Name: value.Type().Field(i).Name,
			Num:  MethodNum(value.Field(i).Uint()),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Num < res[j].Num })
	return res
}

// Lookup returns the name of a method of the given actor.
func Lookup(actor Actor, num MethodNum) (string, bool) {
	if num == MethodSend {
		return "Send", true
	}
	for _, method := range Methods[actor] {
		if method.Num == num {
			return method.Name, true
		}
	}
	return "", false
}
