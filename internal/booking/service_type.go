package booking

import (
	"strings"
	"time"
)

// ServiceType is the closed set of consultation types that drive appointment
// duration.
type ServiceType string

const (
	ServiceGeneral    ServiceType = "general"
	ServiceCardiology ServiceType = "cardiology"
	ServicePediatric  ServiceType = "pediatric"
)

// Durations maps each service type to its consultation length. Unknown
// services fall back to the general duration.
var Durations = map[ServiceType]time.Duration{
	ServiceGeneral:    30 * time.Minute,
	ServiceCardiology: 45 * time.Minute,
	ServicePediatric:  20 * time.Minute,
}

// catalog maps known service labels to their type. Lookups are
// case-insensitive exact matches against the label.
var catalog = map[string]ServiceType{
	"general consultation": ServiceGeneral,
	"cardiology review":    ServiceCardiology,
	"cardiology":           ServiceCardiology,
	"pediatric checkup":    ServicePediatric,
	"pediatrics":           ServicePediatric,
}

// ResolveServiceType classifies a free-text service label. It tries the
// catalog first, then falls back to whole-word keyword matching so that a
// label such as "Cardiology Follow-up" still resolves without relying on raw
// substring containment. Anything unrecognized is a general consultation.
func ResolveServiceType(serviceName string) ServiceType {
	name := strings.ToLower(strings.TrimSpace(serviceName))
	if name == "" {
		return ServiceGeneral
	}
	if st, ok := catalog[name]; ok {
		return st
	}

	// Cardiology wins over any other keyword in the label, so the scan
	// collects matches instead of returning on the first word.
	pediatric := false
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		switch word {
		case "cardiology":
			return ServiceCardiology
		case "pediatric", "pediatrics":
			pediatric = true
		}
	}
	if pediatric {
		return ServicePediatric
	}
	return ServiceGeneral
}

// DurationFor returns the consultation length for a service label.
func DurationFor(serviceName string) time.Duration {
	if d, ok := Durations[ResolveServiceType(serviceName)]; ok {
		return d
	}
	return Durations[ServiceGeneral]
}
