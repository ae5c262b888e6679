package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrescriptionHasDispatchableItem(t *testing.T) {
	p := &Prescription{}
	assert.False(t, p.HasDispatchableItem())

	p.Items = append(p.Items, &PrescriptionItem{DrugName: "   "})
	assert.False(t, p.HasDispatchableItem())

	p.Items = append(p.Items, &PrescriptionItem{DrugName: "Amoxicillin"})
	assert.True(t, p.HasDispatchableItem())
}
