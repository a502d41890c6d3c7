package eiep

import (
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	HeaderMarker = "HDR"
	DetailMarker = "DET"
)

// Record is a detail row that can render itself in column order.
type Record interface {
	ToRow() []string
}

// Whether energy at the ICP is injected into or extracted from the network
type FlowDirection string

const (
	FlowInject  FlowDirection = "I"
	FlowExtract FlowDirection = "X"
)

var flowDirections = mapset.NewSet(FlowInject, FlowExtract)

func (f FlowDirection) Valid() bool {
	return flowDirections.Contains(f)
}

// ValidateFlowDirection is shared by both detail record formats.
func ValidateFlowDirection(f FlowDirection) error {
	if !f.Valid() {
		return domainError("energy flow direction", string(f), "expected I or X")
	}
	return nil
}

// CheckDomain fails with a DomainError naming field when value isn't in domain.
func CheckDomain[T ~string](field string, domain mapset.Set[T], value T) error {
	if !domain.Contains(value) {
		return domainError(field, string(value), "")
	}
	return nil
}
