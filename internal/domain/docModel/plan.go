package docModel

import "strings"

// Plan is the slice of a subscription the pipelines care about: how big a
// document may be and how many pages it may have. Billing itself lives with
// the payment provider.
type Plan struct {
	Name           string
	MaxPagesPerDoc int
	MaxFileBytes   int64
}

var (
	PlanFree = Plan{Name: "free", MaxPagesPerDoc: 5, MaxFileBytes: 4 << 20}
	PlanPro  = Plan{Name: "pro", MaxPagesPerDoc: 25, MaxFileBytes: 16 << 20}
)

// ParsePlan normalizes a plan name. Anything unknown quietly falls back to
// free, the safest quota to misapply.
func ParsePlan(raw string) Plan {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PlanPro.Name:
		return PlanPro
	default:
		return PlanFree
	}
}
