package broker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, "validation", kindOf(ledger.Invalidf("bad amount")))
	assert.Equal(t, "state", kindOf(ledger.Statef("game ended")))
	assert.Equal(t, "not_found", kindOf(ledger.NotFoundf("no such game")))
	assert.Equal(t, "conflict", kindOf(ledger.Conflictf("passcode taken")))
	assert.Equal(t, "internal", kindOf(errors.New("pg down")))
}
