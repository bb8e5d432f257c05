package atlasportal

// Assembly is the output of assembling a resolution pass. Complete is true
// iff no piece remains missing.
type Assembly struct {
	Complete  bool
	Assembled Assembled
	Missing   []string
}

// Assembled groups the static foundation data with the partitioned pieces of
// a resolution pass.
type Assembled struct {
	Foundation    Foundation
	FoundPieces   []Piece
	MissingPieces []Piece
	Integration   Integration
}

// Foundation carries the fixed reference data the portal is built on.
type Foundation struct {
	Guardians []Guardian
	Addresses []AddressRecord
	Constants []Constant
}

// Integration buckets found pieces by category for the structured output.
// Only contract, quest, and guardian pieces are bucketed; found pieces of
// other categories appear in FoundPieces only. Constants always carries the
// static constants table.
type Integration struct {
	Contracts []Piece
	Quests    []Piece
	Guardians []Piece
	Constants []Constant
}

// Assemble partitions resolved pieces into found and missing, buckets the
// found pieces by category, and reports completeness. It is a pure function
// with no I/O.
func Assemble(pieces []Piece) Assembly {
	assembled := Assembled{
		Foundation: Foundation{
			Guardians: Guardians(),
			Addresses: CovenantAddresses(),
			Constants: Constants(),
		},
		FoundPieces:   []Piece{},
		MissingPieces: []Piece{},
		Integration: Integration{
			Contracts: []Piece{},
			Quests:    []Piece{},
			Guardians: []Piece{},
			Constants: Constants(),
		},
	}

	missing := []string{}

	for _, piece := range pieces {
		if piece.Status != StatusFound {
			assembled.MissingPieces = append(assembled.MissingPieces, piece)
			missing = append(missing, piece.Name)
			continue
		}

		assembled.FoundPieces = append(assembled.FoundPieces, piece)

		switch piece.Category {
		case CategoryContract:
			assembled.Integration.Contracts = append(assembled.Integration.Contracts, piece)
		case CategoryQuest:
			assembled.Integration.Quests = append(assembled.Integration.Quests, piece)
		case CategoryGuardian:
			assembled.Integration.Guardians = append(assembled.Integration.Guardians, piece)
		case CategoryLore, CategoryConstant, CategoryIntegration:
			// Not bucketed. These categories only surface in FoundPieces.
		}
	}

	return Assembly{
		Complete:  len(missing) == 0,
		Assembled: assembled,
		Missing:   missing,
	}
}
