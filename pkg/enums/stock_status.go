package enums

// StockStatus is the computed stock health of a medicine record. It is
// derived at read time and never persisted.
type StockStatus string

const (
	StockStatusLow StockStatus = "low"
	StockStatusOK  StockStatus = "ok"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}
