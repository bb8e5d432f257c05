package atlasportal

import "strings"

// Chain identifies the network an address record belongs to.
type Chain string

// Supported chains for covenant address records.
const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
)

// Guardian is a fixed reference record mapping a numeric path to the
// symbolic attributes used in prompt text. Guardians are loaded once
// and never mutated.
type Guardian struct {
	Path         int
	Letter       string
	NumericValue int
	Mapping      string
}

// AddressRecord is a fixed, immutable covenant address entry.
type AddressRecord struct {
	Address   string
	Chain     Chain
	ChainID   string
	Name      string
	Official  bool
	Immutable bool
}

// Constant is a named numeric value embedded in generated integration code.
type Constant struct {
	Name  string
	Value int
}

var guardians = []Guardian{
	{Path: 1, Letter: "A", NumericValue: 1111, Mapping: "Siege"},
	{Path: 2, Letter: "T", NumericValue: 888, Mapping: "Fighter"},
	{Path: 3, Letter: "L", NumericValue: 1468, Mapping: "Assassin"},
	{Path: 4, Letter: "A", NumericValue: 2500, Mapping: "Ranged"},
	{Path: 5, Letter: "S", NumericValue: 4000, Mapping: "Spellcaster"},
	{Path: 6, Letter: "M", NumericValue: 6250, Mapping: "Riverman"},
	{Path: 7, Letter: "N", NumericValue: 8999, Mapping: "Numeraire"},
}

var covenantAddresses = []AddressRecord{
	{
		Address:   "0xA0A89db1C899c49F98E6326b764BAFcf167fC2CE",
		Chain:     ChainArbitrum,
		ChainID:   "42161",
		Name:      "Atlas Mine",
		Official:  true,
		Immutable: true,
	},
	{
		Address:   "0x539bdE0d7Dbd336b79148AA742883198BBF60342",
		Chain:     ChainEthereum,
		ChainID:   "1",
		Name:      "MAGIC Token",
		Official:  true,
		Immutable: true,
	},
	{
		Address:   "0x2C852e740B62308c46DD29B982FBb650D063Bd07",
		Chain:     ChainPolygon,
		ChainID:   "137",
		Name:      "Bridgeworld Portal",
		Official:  true,
		Immutable: false,
	},
}

var constants = []Constant{
	{Name: "ATLAS_MINE_LOCK_BOOST", Value: 1111},
	{Name: "HARVESTER_PARTS_CAP", Value: 888},
	{Name: "LEGION_CRAFT_XP", Value: 1468},
	{Name: "MAGIC_EMISSION_SHARE", Value: 2500},
	{Name: "GUARDIAN_PATH_COUNT", Value: 7},
}

// Guardians returns the fixed guardian table.
func Guardians() []Guardian {
	res := make([]Guardian, len(guardians))
	copy(res, guardians)
	return res
}

// GuardianByPath returns the guardian assigned to the given path,
// reporting whether one exists.
func GuardianByPath(path int) (Guardian, bool) {
	for _, g := range guardians {
		if g.Path == path {
			return g, true
		}
	}
	return Guardian{}, false
}

// CovenantAddresses returns the fixed covenant address table.
func CovenantAddresses() []AddressRecord {
	res := make([]AddressRecord, len(covenantAddresses))
	copy(res, covenantAddresses)
	return res
}

// AddressByChain returns the first covenant address record configured for the
// given chain, reporting whether one exists.
func AddressByChain(chain Chain) (AddressRecord, bool) {
	for _, rec := range covenantAddresses {
		if rec.Chain == chain {
			return rec, true
		}
	}
	return AddressRecord{}, false
}

// IsCovenantAddress reports whether the given address is one of the fixed
// covenant addresses. The comparison is case-insensitive.
func IsCovenantAddress(address string) bool {
	_, ok := LookupAddress(address)
	return ok
}

// LookupAddress returns the full covenant address record for the given
// address, reporting whether one exists. The comparison is case-insensitive.
func LookupAddress(address string) (AddressRecord, bool) {
	for _, rec := range covenantAddresses {
		if strings.EqualFold(rec.Address, address) {
			return rec, true
		}
	}
	return AddressRecord{}, false
}

// Constants returns the fixed named constants table.
func Constants() []Constant {
	res := make([]Constant, len(constants))
	copy(res, constants)
	return res
}
