package cvtrack

import (
	"fmt"
	"io"
)

// QueryCapabilities writes a human readable report of the backend's library
// version and which tracker variants and operations are available on it
func QueryCapabilities(w io.Writer, b Backend) error {

	if b == nil {
		return fmt.Errorf("%w: nil backend", ErrInvalidArgument)
	}

	rt := b.Version()

	_, err := fmt.Fprintf(w, "Backend: %s, Library Version: %s\n", b.Name(), rt)

	if err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}

	fmt.Fprintf(w, "MultiTracker: %s\n", availability(MultiTrackerAvailable(rt),
		fmt.Sprintf("requires version %s or later", MultiTrackerMinVersion)))

	fmt.Fprintf(w, "Tracker variants:\n")

	for _, rule := range Rules() {

		if Available(rule.Variant, rt) && !binds(b, rule.Variant) {
			fmt.Fprintf(w, "  %-10s unavailable: not provided by the %s backend\n",
				rule.Variant, b.Name())
			continue
		}

		fmt.Fprintf(w, "  %-10s %s\n", rule.Variant,
			availability(Available(rule.Variant, rt),
				exclusionReason(rule.Variant, OpConstruct, rt)))

		// report operation level exclusions on the running version
		for _, op := range []Operation{OpInit, OpUpdate} {
			if Available(rule.Variant, rt) && !Supported(rule.Variant, op, rt) {
				fmt.Fprintf(w, "    %-8s unavailable: %s\n", op,
					exclusionReason(rule.Variant, op, rt))
			}
		}
	}

	return nil
}

// availability formats an availability flag with its reason
func availability(ok bool, reason string) string {
	if ok {
		return "available"
	}
	return "unavailable: " + reason
}
