package domain_test

import (
	"strings"
	"testing"

	"platebind/testutil"
)

// The domain package is the dependency floor: it must not reach back into
// internal packages.
func TestDomainHasNoInternalImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/domain must stay free of internal dependencies")
}

// Nothing under pkg/domain may pull in third-party modules, directly or
// through another package.
func TestDomainHasNoThirdPartyDependencies(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, "platebind/pkg/domain", thirdParty,
		"pkg/domain must depend on the standard library only")
}

func thirdParty(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return strings.Contains(first, ".") && !strings.HasPrefix(path, "platebind/")
}
