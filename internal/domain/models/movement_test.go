package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementTypeSets(t *testing.T) {
	for _, mt := range []MovementType{MovementPurchase, MovementReturn, MovementAdjustment, MovementRestock} {
		assert.True(t, mt.Valid(), mt)
		assert.True(t, mt.IsInbound(), mt)
	}
	for _, mt := range []MovementType{MovementSale, MovementDamage, MovementTransfer} {
		assert.True(t, mt.Valid(), mt)
		assert.False(t, mt.IsInbound(), mt)
	}
	assert.False(t, MovementType("gift").Valid())
}

func TestReferenceTypeValid(t *testing.T) {
	assert.True(t, ReferenceServiceVisit.Valid())
	assert.True(t, ReferenceStockAdjustment.Valid())
	assert.False(t, ReferenceType("invoice").Valid())
	assert.False(t, ReferenceType("").Valid())
}

func TestMovementConsistent(t *testing.T) {
	m := StockMovement{QuantityBefore: 10, QuantityChange: -6, QuantityAfter: 4}
	assert.True(t, m.Consistent())

	m.QuantityAfter = 5
	assert.False(t, m.Consistent())

	m = StockMovement{QuantityBefore: 1, QuantityChange: -2, QuantityAfter: -1}
	assert.False(t, m.Consistent())
}
