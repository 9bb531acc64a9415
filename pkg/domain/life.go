package domain

import "github.com/naveenspark/cbdemo/pkg/timefmt"

// LifeState is the coarse lifecycle status of an end-user object. It is
// stored on the ledger as the balance of the "life" asset.
type LifeState int

const (
	LifeInvalid LifeState = iota
	LifeReturned
	LifeDepleted
	LifeInUse
	LifePendingPairing
	LifePendingValidation
	LifeProvisioned
	LifeNew
)

var lifeNames = [...]string{"Invalid", "Returned", "Depleted", "In use", "Waiting for Pairing", "Waiting Validation", "Provisioned", "New/Created"}

var lifeNamesDE = [...]string{"Ungültig", "Zurückgegeben", "Verbraucht", "In Benutzung", "Warte auf Pairing", "Warte auf Validierung", "Provisioniert", "Neu/Erzeugt"}

// Name returns the localized state name. States above LifeNew are life kept
// on stock by a licensee.
func (s LifeState) Name(lang timefmt.Lang) string {
	if s < 0 {
		return "?"
	}
	if s > LifeNew {
		if lang.German() {
			return "(Leben auf Vorrat)"
		}
		return "(Life on stock)"
	}
	if lang.German() {
		return lifeNamesDE[s]
	}
	return lifeNames[s]
}

func (s LifeState) String() string { return s.Name(timefmt.EN) }

// Tier values from the moTier field.
const (
	TierEndUser = 255
)

// Well-known asset names.
const (
	AssetLife  = "life"
	AssetValue = "value"
)
