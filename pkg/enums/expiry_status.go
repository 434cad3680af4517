package enums

// ExpiryStatus is the computed expiry health of a medicine record. It is
// derived at read time and never persisted.
type ExpiryStatus string

const (
	ExpiryStatusExpired    ExpiryStatus = "expired"
	ExpiryStatusNearExpiry ExpiryStatus = "near_expiry"
	ExpiryStatusOK         ExpiryStatus = "ok"
)

// String implements fmt.Stringer.
func (e ExpiryStatus) String() string {
	return string(e)
}
