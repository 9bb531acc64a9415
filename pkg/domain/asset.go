package domain

import "strings"

// Fields are the plain fields of an end-user object as returned by GET /mos/0.
type Fields struct {
	ClientKey     string     `json:"clientKey,omitempty"`
	MoTier        int        `json:"moTier"`
	CustomID      string     `json:"customId,omitempty"`
	CustomPayload *string    `json:"customPayload,omitempty"` // nil when the node omits it
	TimeBombs     []Timebomb `json:"timeBombs,omitempty"`
}

// Payload returns the custom payload, or "" when absent.
func (f *Fields) Payload() string {
	if f == nil || f.CustomPayload == nil {
		return ""
	}
	return *f.CustomPayload
}

// EndUser reports whether the object is an end user (not a licensee).
func (f *Fields) EndUser() bool {
	return f != nil && f.MoTier == TierEndUser
}

// Licensee reports whether the object is a licensee or sublicensee.
func (f *Fields) Licensee() bool {
	return f != nil && f.MoTier >= 3 && f.MoTier <= 127
}

// Transaction is one entry of an asset's append-only history.
type Transaction struct {
	Timestamp Instant `json:"timestamp"`
	Amount    int64   `json:"amount"`
	Record    string  `json:"transactionRecord,omitempty"`
}

// Asset is a named balance with an optional chronological history.
type Asset struct {
	Name    string        `json:"assetName"`
	Balance int64         `json:"assetCurrentBalance"`
	History []Transaction `json:"transactionHistoryList,omitempty"`
}

// BaseName returns the asset name without its "#domain" suffix.
func (a Asset) BaseName() string {
	return BaseAssetName(a.Name)
}

// BaseAssetName strips the "#domain" suffix from a namespaced asset name.
func BaseAssetName(name string) string {
	base, _, _ := strings.Cut(name, "#")
	return base
}

// AssetList is the response of GET /mos/0/allAssets.
type AssetList struct {
	Assets []Asset `json:"allAssetsWithTransaction"`
}

// Find returns the asset whose base name matches name. A nil list finds nothing.
func (l *AssetList) Find(name string) (*Asset, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Assets {
		if l.Assets[i].BaseName() == name {
			return &l.Assets[i], true
		}
	}
	return nil, false
}

// Balance returns the current balance of name. ok is false when the balance is unknown.
func (l *AssetList) Balance(name string) (balance int64, ok bool) {
	a, ok := l.Find(name)
	if !ok {
		return 0, false
	}
	return a.Balance, true
}

// History returns the transaction history of name, or nil.
func (l *AssetList) History(name string) []Transaction {
	a, ok := l.Find(name)
	if !ok {
		return nil
	}
	return a.History
}

// AssetBalance is a name and balance pair from an update response.
type AssetBalance struct {
	Name    string `json:"assetName"`
	Balance int64  `json:"assetCurrentBalance"`
}

// UpdateResult is the body returned by an asset update. With deferred
// completion it holds the provisional remaining balances.
type UpdateResult struct {
	MoAssets struct {
		Remaining []AssetBalance `json:"assetsRemainingBalance"`
	} `json:"moAssets"`
}

// Remaining returns the provisional balance for name from the update response.
func (r *UpdateResult) Remaining(name string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	for _, b := range r.MoAssets.Remaining {
		if BaseAssetName(b.Name) == name {
			return b.Balance, true
		}
	}
	return 0, false
}

// Dependent identifies a sub-object of a licensee.
type Dependent struct {
	ClientKey string `json:"clientKey"`
}

// DependentList is the response of GET /mos/{key}/submos.
type DependentList struct {
	Keys []Dependent `json:"ListOfMoKeys"`
}
