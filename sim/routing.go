package sim

import "fmt"

// nextStation returns where a customer goes after service at from, or
// NoStation when the customer leaves the network.
//
//	registration --general-->    general    --> exit
//	             --specialist--> specialist --> exit
func nextStation(from StationID, class CustomerClass) StationID {
	switch from {
	case StationRegistration:
		switch class {
		case ClassGeneral:
			return StationGeneral
		case ClassSpecialist:
			return StationSpecialist
		}
		panic(fmt.Sprintf("nextStation: unknown customer class %v", class))
	case StationGeneral, StationSpecialist:
		return NoStation
	}
	panic(fmt.Sprintf("nextStation: %v is not a station", from))
}
