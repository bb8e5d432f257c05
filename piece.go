package atlasportal

import "strings"

// Category classifies a piece by what kind of integration artifact it names.
type Category string

// Piece categories, inferred from keyword substrings in the piece name.
const (
	CategoryContract    Category = "contract"
	CategoryLore        Category = "lore"
	CategoryQuest       Category = "quest"
	CategoryGuardian    Category = "guardian"
	CategoryConstant    Category = "constant"
	CategoryIntegration Category = "integration"
)

// Status describes the outcome of resolving a piece against the search
// backend.
type Status string

// Piece statuses. StatusPartial is reserved for pieces whose sources only
// partially cover the artifact; the current resolution rules never assign it.
const (
	StatusFound   Status = "found"
	StatusMissing Status = "missing"
	StatusPartial Status = "partial"
)

// Piece is a named item representing a potentially-missing integration
// artifact, resolved via external search.
type Piece struct {
	ID       string
	Category Category
	Name     string
	Status   Status
	Sources  []string
}

// DefaultMissingPieces is the fixed list of artifacts the portal still needs
// to track down.
var DefaultMissingPieces = []string{
	"Atlas Mine staking contract address",
	"Harvester emission quest chain",
	"Guardian path bonus table",
	"Legion crafting constant 1111",
	"AI Frens integration endpoints",
	"Founding of Bridgeworld codex",
}

// CategoryForName infers the category of a piece from its name. The keyword
// checks run in a fixed order and the first match wins, so a name containing
// several keywords always lands in the earliest matching category.
func CategoryForName(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "contract") || strings.Contains(lower, "address"):
		return CategoryContract
	case strings.Contains(lower, "quest"):
		return CategoryQuest
	case strings.Contains(lower, "guardian"):
		return CategoryGuardian
	case strings.Contains(lower, "constant") ||
		strings.Contains(lower, "1111") ||
		strings.Contains(lower, "888"):
		return CategoryConstant
	case strings.Contains(lower, "integration"):
		return CategoryIntegration
	default:
		return CategoryLore
	}
}

// PieceID derives a stable identifier from a piece name by lowercasing it and
// collapsing every non-alphanumeric run into a single dash.
func PieceID(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
