package chain

import "github.com/japaric/webpki/wpkierror"

// Budget bounds the total work a single Validate call may perform, so that
// an adversarial fan-out of intermediates cannot force unbounded search.
// The zero value is not usable as a budget that permits any work; use
// DefaultBudget for reasonable defaults, or construct one directly to
// override them.
type Budget struct {
	SigChecks int
	PathBuild int
}

// DefaultBudget returns conservative defaults: 100 signature verifications,
// 10 intermediate path-build descents.
func DefaultBudget() Budget {
	return Budget{SigChecks: 100, PathBuild: 10}
}

func (b *Budget) consumeSigCheck() error {
	if b.SigChecks <= 0 {
		return wpkierror.MaximumSignatureChecksExceeded
	}
	b.SigChecks--
	return nil
}

func (b *Budget) consumePathBuild() error {
	if b.PathBuild <= 0 {
		return wpkierror.MaximumPathBuildCallsExceeded
	}
	b.PathBuild--
	return nil
}

func isFatal(err error) bool {
	return err == wpkierror.MaximumSignatureChecksExceeded || err == wpkierror.MaximumPathBuildCallsExceeded
}
