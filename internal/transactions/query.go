package transactions

import (
	"strconv"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/ledger"
)

// Listing defaults and bounds. Defaults apply to omitted fields only;
// provided-but-invalid values are rejected, never coerced.
const (
	DefaultLimit = 10
	MaxLimit     = 200
)

// QueryParams carries the raw, possibly-omitted listing parameters exactly
// as the caller sent them. An empty string means the field was omitted.
type QueryParams struct {
	Skip  string
	Limit string
	Sort  string
	Order string
}

// build translates the raw parameters into a validated ledger query.
func (p QueryParams) build() (ledger.Query, error) {
	q := ledger.Query{
		Skip:  0,
		Limit: DefaultLimit,
		Sort:  ledger.SortByCreatedAt,
		Order: ledger.OrderDesc,
	}

	if p.Skip != "" {
		skip, err := strconv.Atoi(p.Skip)
		if err != nil {
			return ledger.Query{}, apperr.New(apperr.InvalidArgument, "skip must be an integer")
		}
		q.Skip = skip
	}
	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil {
			return ledger.Query{}, apperr.New(apperr.InvalidArgument, "limit must be an integer")
		}
		q.Limit = limit
	}
	if p.Sort != "" {
		q.Sort = p.Sort
	}
	if p.Order != "" {
		q.Order = p.Order
	}

	if err := q.Validate(); err != nil {
		return ledger.Query{}, err
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q, nil
}
