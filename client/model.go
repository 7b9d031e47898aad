package client

import (
	"golang.org/x/exp/slices"
)

// capability flags of a scheme
// a flag that is not confirmed by the backend is always false
type CapabilityFlag string

const (
	CapabilitySigning         CapabilityFlag = "signing"
	CapabilityVerification    CapabilityFlag = "verification"
	CapabilityTracing         CapabilityFlag = "tracing"
	CapabilityFastRecognition CapabilityFlag = "fastRecognition"
	CapabilityFullRecognition CapabilityFlag = "fullRecognition"
)

type SchemeCapabilities struct {
	Signing         bool
	Verification    bool
	Tracing         bool
	FastRecognition bool
	FullRecognition bool
}

func (self *SchemeCapabilities) Has(flag CapabilityFlag) bool {
	switch flag {
	case CapabilitySigning:
		return self.Signing
	case CapabilityVerification:
		return self.Verification
	case CapabilityTracing:
		return self.Tracing
	case CapabilityFastRecognition:
		return self.FastRecognition
	case CapabilityFullRecognition:
		return self.FullRecognition
	default:
		return false
	}
}

type SchemeDescriptor struct {
	Id              string
	DisplayName     string
	ParameterFamily string
	Capabilities    SchemeCapabilities
	Available       bool
}

// one named hex value of a key, address or signature
// components keep the order the scheme defines for them
type Component struct {
	Name string
	Hex  string
}

func FindComponent(components []Component, name string) (string, bool) {
	for _, component := range components {
		if component.Name == name {
			return component.Hex, true
		}
	}
	return "", false
}

func cloneComponents(components []Component) []Component {
	return slices.Clone(components)
}

type RecordStatus string

const (
	StatusReady               RecordStatus = "ready"
	StatusPendingVerification RecordStatus = "pending_verification"
	StatusVerified            RecordStatus = "verified"
	StatusInvalid             RecordStatus = "invalid"
)

// record ids are unique only within (scheme, collection)
type KeyRecord struct {
	Id      string
	Scheme  string
	Public  []Component
	Private []Component
	Status  RecordStatus
}

type AddressRecord struct {
	Id         string
	Scheme     string
	OwnerKeyId string
	Components []Component
	Status     RecordStatus
}

func (self *AddressRecord) AddrHex() string {
	hex, ok := FindComponent(self.Components, "addr")
	if !ok {
		return placeholderHex
	}
	return hex
}

type DskRecord struct {
	Id        string
	Scheme    string
	AddressId string
	KeyId     string
	SecretHex string
	Status    RecordStatus
}

// AddressSnapshot is copied at creation time and never mutated afterward.
// Positional address selection goes stale as soon as the address list is
// appended to or reloaded; the snapshot is what verification runs against.
type TransactionRecord struct {
	Id              string
	Scheme          string
	Message         string
	Signature       []Component
	AddressSnapshot []Component
	Status          RecordStatus
}

type TraceResult struct {
	Id                   string
	Scheme               string
	TracedAddressId      string
	RecoveredIdentityHex string
	MatchedKeyId         string
	PerfectMatch         bool
}
