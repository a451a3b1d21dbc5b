package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestOpeningRequestValidate(t *testing.T) {
	valid := OpeningRequest{
		CustomerName:     "Acme Traders",
		SiteAreaName:     "north",
		Town:             "Pune",
		Date:             now.AddDate(0, 0, -1),
		OSFullBarrels:    10,
		OSABCBarrels:     5,
		OSDamagedBarrels: 2,
	}
	assert.NoError(t, valid.Validate(now))

	missingName := valid
	missingName.CustomerName = "   "
	assert.Error(t, missingName.Validate(now))

	missingDate := valid
	missingDate.Date = time.Time{}
	assert.Error(t, missingDate.Validate(now))

	future := valid
	future.Date = now.AddDate(0, 0, 1)
	assert.Error(t, future.Validate(now))

	negative := valid
	negative.OSDamagedBarrels = -1
	assert.Error(t, negative.Validate(now))
}

func TestOpeningRequestValidate_SameDayIsNotFuture(t *testing.T) {
	// A morning "now" must still accept an entry dated today.
	p := OpeningRequest{
		CustomerName: "Acme Traders",
		Date:         time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, p.Validate(time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)))
}

func TestTransactionRequestValidate(t *testing.T) {
	valid := TransactionRequest{
		CustomerName:        "Acme Traders",
		SiteAreaName:        "north",
		Date:                now.AddDate(0, 0, -1),
		FullBarrelsReceived: 3,
		ABCBarrelsSupplied:  1,
	}
	assert.NoError(t, valid.Validate(now))

	missingName := valid
	missingName.CustomerName = ""
	assert.Error(t, missingName.Validate(now))

	future := valid
	future.Date = now.AddDate(0, 0, 2)
	assert.Error(t, future.Validate(now))

	negativeReceived := valid
	negativeReceived.FullBarrelsReceived = -1
	assert.Error(t, negativeReceived.Validate(now))

	negativeSupplied := valid
	negativeSupplied.ABCBarrelsSupplied = -2
	assert.Error(t, negativeSupplied.Validate(now))
}

func TestValidationErrorsAreTyped(t *testing.T) {
	err := TransactionRequest{}.Validate(now)
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCustomerSiteKey(t *testing.T) {
	a := CustomerSite{CustomerName: "X", SiteAreaName: "north"}
	b := CustomerSite{CustomerName: "X", SiteAreaName: "south"}
	c := CustomerSite{CustomerName: "X", SiteAreaName: "north"}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), c.Key())
}
