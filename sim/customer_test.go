package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomer_WaitingTime_ExcludesService(t *testing.T) {
	// GIVEN a customer arriving at 2 who received 3 + 4 minutes of service
	c := NewCustomer(1, ClassGeneral, 2)
	c.AddServiceTime(3)
	c.AddServiceTime(4)

	// WHEN the customer departs at 15
	c.Finalize(15)

	// THEN waiting time is 15 - 2 - 7
	assert.Equal(t, 6.0, c.WaitingTime())
	assert.Equal(t, LocationDeparted, c.Location)
	assert.Equal(t, NoStation, c.Station)
}

func TestCustomer_Finalize_Twice_Panics(t *testing.T) {
	c := NewCustomer(1, ClassSpecialist, 0)
	c.Finalize(1)
	assert.Panics(t, func() { c.Finalize(2) })
	assert.Equal(t, 1.0, c.DepartureTime, "second finalize must not overwrite departure")
}

func TestCustomer_WaitingTime_BeforeDeparture_Panics(t *testing.T) {
	c := NewCustomer(1, ClassGeneral, 0)
	assert.Panics(t, func() { c.WaitingTime() })
}

func TestCustomer_String(t *testing.T) {
	assert.Equal(t, "customer#7(specialist)", NewCustomer(7, ClassSpecialist, 0).String())
	assert.Equal(t, "general", ClassGeneral.String())
}
