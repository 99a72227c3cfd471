package refdb

import (
	"database/sql"
	"fmt"
	"go/version"
	"runtime"
	"slices"
	"strings"
)

// MinGoVersion is the oldest Go runtime the reference database supports.
const MinGoVersion = "go1.22"

// CheckRequirements reports whether the running platform can host the
// reference database. Every unmet requirement is listed in the returned
// error, which wraps ErrUnsupportedPlatform.
func CheckRequirements() error {
	return checkRequirements(runtime.Version(), sql.Drivers())
}

func checkRequirements(goVersion string, drivers []string) error {
	var problems []string

	// Development toolchains report versions like "devel go1.25-abcdef"; they
	// are accepted as recent enough.
	if version.IsValid(goVersion) && version.Compare(goVersion, MinGoVersion) < 0 {
		problems = append(problems, fmt.Sprintf(
			"expected Go %s or above, actual version is %s", MinGoVersion, goVersion,
		))
	}

	if !slices.Contains(drivers, DriverName) {
		problems = append(problems, fmt.Sprintf(
			"expected database/sql driver %q registered to use the SQLite database, driver may be missing",
			DriverName,
		))
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w\n- %s", ErrUnsupportedPlatform, strings.Join(problems, "\n- "))
}
