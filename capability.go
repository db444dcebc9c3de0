package cvtrack

import (
	"fmt"
	"strings"
)

// Variant identifies a single object tracking algorithm
type Variant int

// Tracker variants, in the order used for reporting and MultiTracker tests
const (
	Boosting Variant = iota + 1
	MIL
	KCF
	MedianFlow
	TLD
	MOSSE
	CSRT
)

// Variants is the list of all known tracker variants
var Variants = []Variant{Boosting, MIL, KCF, MedianFlow, TLD, MOSSE, CSRT}

// String returns the variant name as used by the MultiTracker add methods
func (v Variant) String() string {
	switch v {
	case Boosting:
		return "BOOSTING"
	case MIL:
		return "MIL"
	case KCF:
		return "KCF"
	case MedianFlow:
		return "MEDIANFLOW"
	case TLD:
		return "TLD"
	case MOSSE:
		return "MOSSE"
	case CSRT:
		return "CSRT"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// valid reports whether v is one of the known variants
func (v Variant) valid() bool {
	return v >= Boosting && v <= CSRT
}

// ParseVariant returns the Variant for the given name.  Matching is case
// insensitive and accepts an optional "Tracker" prefix, eg: "TrackerKCF"
func ParseVariant(name string) (Variant, error) {

	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "TRACKER")

	for _, v := range Variants {
		if v.String() == key {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown tracker variant %q", ErrInvalidArgument, name)
}

// Operation is a tracker operation that can be gated per library version
type Operation int

const (
	// OpConstruct covers creating the tracker at all
	OpConstruct Operation = iota
	// OpInit covers seeding the tracker with a frame and region
	OpInit
	// OpUpdate covers tracking against a new frame
	OpUpdate
)

// String returns a readable name of the operation
func (o Operation) String() string {
	switch o {
	case OpConstruct:
		return "construct"
	case OpInit:
		return "init"
	case OpUpdate:
		return "update"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Exclusion marks an operation as unsupported on an exact library version,
// independent of the variant's minimum version
type Exclusion struct {
	Op      Operation
	Version Version
	Reason  string
}

// Rule describes when a variant is available.  A zero MinVersion means the
// variant is always available
type Rule struct {
	Variant    Variant
	MinVersion Version
	Exclusions []Exclusion
}

// MultiTrackerMinVersion is the first library version providing the
// MultiTracker aggregator
var MultiTrackerMinVersion = V(3, 1, 0)

// capabilityTable is the static support matrix of the wrapped library
var capabilityTable = []Rule{
	{Variant: Boosting},
	{Variant: MIL},
	{Variant: KCF, MinVersion: V(3, 1, 0)},
	{Variant: MedianFlow},
	{
		Variant: TLD,
		Exclusions: []Exclusion{
			{Op: OpUpdate, Version: V(3, 1, 0), Reason: "update does not complete"},
			{Op: OpUpdate, Version: V(3, 2, 0), Reason: "update does not complete"},
		},
	},
	{Variant: MOSSE, MinVersion: V(3, 4, 0)},
	{Variant: CSRT, MinVersion: V(3, 4, 1)},
}

// Rules returns a copy of the capability table
func Rules() []Rule {

	rules := make([]Rule, len(capabilityTable))

	for i, r := range capabilityTable {
		rules[i] = r
		rules[i].Exclusions = append([]Exclusion(nil), r.Exclusions...)
	}

	return rules
}

// ruleFor looks up the capability rule of a variant
func ruleFor(v Variant) (Rule, bool) {
	for _, r := range capabilityTable {
		if r.Variant == v {
			return r, true
		}
	}
	return Rule{}, false
}

// Available reports whether the variant can be constructed on the given
// runtime library version
func Available(v Variant, rt Version) bool {
	return Supported(v, OpConstruct, rt)
}

// Supported reports whether the operation of the variant is usable on the
// given runtime library version.  The variant must meet its minimum version
// and the operation must not be excluded on that exact version.  An
// exclusion of OpConstruct makes every operation unsupported
func Supported(v Variant, op Operation, rt Version) bool {

	rule, ok := ruleFor(v)

	if !ok {
		return false
	}

	if !rt.AtLeast(rule.MinVersion) {
		return false
	}

	for _, ex := range rule.Exclusions {
		if ex.Version != rt {
			continue
		}

		if ex.Op == op || ex.Op == OpConstruct {
			return false
		}
	}

	return true
}

// exclusionReason returns why an operation is excluded, if it is
func exclusionReason(v Variant, op Operation, rt Version) string {

	rule, ok := ruleFor(v)

	if !ok {
		return "unknown variant"
	}

	if !rt.AtLeast(rule.MinVersion) {
		return fmt.Sprintf("requires version %s or later", rule.MinVersion)
	}

	for _, ex := range rule.Exclusions {
		if ex.Version == rt && (ex.Op == op || ex.Op == OpConstruct) {
			return ex.Reason
		}
	}

	return ""
}

// AvailableVariants returns the variants available on the runtime version in
// declaration order
func AvailableVariants(rt Version) []Variant {

	var out []Variant

	for _, r := range capabilityTable {
		if Available(r.Variant, rt) {
			out = append(out, r.Variant)
		}
	}

	return out
}

// MultiTrackerAvailable reports whether the MultiTracker aggregator exists in
// the given runtime version
func MultiTrackerAvailable(rt Version) bool {
	return rt.AtLeast(MultiTrackerMinVersion)
}
