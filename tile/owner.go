package tile

import "fmt"

// Owner of a tile or entity. Values below MaxCompanies are companies.
type Owner uint8

const (
	MaxCompanies = 15

	OwnerTown    Owner = 0x0F
	OwnerNone    Owner = 0x10
	OwnerWater   Owner = 0x11
	OwnerDeity   Owner = 0x12
	InvalidOwner Owner = 0xFF
)

func (o Owner) IsCompany() bool {
	return o < MaxCompanies
}

func (o Owner) String() string {
	switch o {
	case OwnerTown:
		return "town"
	case OwnerNone:
		return "none"
	case OwnerWater:
		return "water"
	case OwnerDeity:
		return "deity"
	case InvalidOwner:
		return "invalid"
	}
	return fmt.Sprintf("company %d", uint8(o)+1)
}

type owned interface {
	owner() Owner
}
