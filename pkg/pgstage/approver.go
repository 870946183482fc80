package pgstage

import "context"

// Approver decides whether a load may proceed when the staging schema
// contains tables outside the configured destination set. The loader never
// touches such tables, but their presence means the schema is shared with
// something else, which violates the ownership assumption the drop step
// relies on.
type Approver interface {
	// RequestApproval asks for confirmation to load into schema while the
	// listed stray tables share it. Returns true to proceed.
	RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error)
}
