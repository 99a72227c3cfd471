// Package printer reports test runs through a multi-destination logger.
//
// Every lifecycle callback becomes one log record whose context names the
// operation and carries the event data. The console destination rewrites
// those records into colorized, human-readable lines; the log file and
// notification destinations receive plain messages.
package printer

import "github.com/rlch/compatinfo/logging"

// Operation names the callback that produced a record.
type Operation string

// Operations, one per callback.
const (
	OpStartTestSuite    Operation = "startTestSuite"
	OpEndTestSuite      Operation = "endTestSuite"
	OpStartTest         Operation = "startTest"
	OpEndTest           Operation = "endTest"
	OpAddError          Operation = "addError"
	OpAddFailure        Operation = "addFailure"
	OpAddIncompleteTest Operation = "addIncompleteTest"
	OpAddRiskyTest      Operation = "addRiskyTest"
	OpAddSkippedTest    Operation = "addSkippedTest"
	OpPrintHeader       Operation = "printHeader"
	OpPrintFooter       Operation = "printFooter"
)

// Context keys set on records.
const (
	KeyOperation       = "operation"
	KeySuiteName       = "suiteName"
	KeyTestCount       = "testCount"
	KeyAssertionCount  = "assertionCount"
	KeyFailureCount    = "failureCount"
	KeyErrorCount      = "errorCount"
	KeyIncompleteCount = "incompleteCount"
	KeySkipCount       = "skipCount"
	KeyRiskyCount      = "riskyCount"
	KeyTestName        = "testName"
	KeyTestClass       = "testClass"
	KeyTestDescription = "testDescription"
	KeyReason          = "reason"
	KeyStatus          = "status"
	KeyReferences      = "references"
	KeyTime            = "time"
)

var operationLevels = map[Operation]logging.Level{
	OpStartTestSuite:    logging.NoticeLevel,
	OpEndTestSuite:      logging.NoticeLevel,
	OpStartTest:         logging.InfoLevel,
	OpEndTest:           logging.InfoLevel,
	OpAddError:          logging.ErrorLevel,
	OpAddFailure:        logging.ErrorLevel,
	OpAddIncompleteTest: logging.WarningLevel,
	OpAddRiskyTest:      logging.WarningLevel,
	OpAddSkippedTest:    logging.WarningLevel,
	OpPrintHeader:       logging.NoticeLevel,
	OpPrintFooter:       logging.NoticeLevel,
}

// Level returns the severity records of this operation are logged at.
// Unknown operations log at info.
func (o Operation) Level() logging.Level {
	if l, ok := operationLevels[o]; ok {
		return l
	}

	return logging.InfoLevel
}

// Known reports whether o is one of the defined operations.
func (o Operation) Known() bool {
	_, ok := operationLevels[o]
	return ok
}

// OperationOf returns the operation recorded in r's context.
func OperationOf(r logging.Record) (Operation, bool) {
	if !r.Has(KeyOperation) {
		return "", false
	}

	return Operation(r.Str(KeyOperation)), true
}

// IsFooter is a notification rule keeping only footer records.
func IsFooter(r logging.Record) bool {
	op, ok := OperationOf(r)
	return ok && op == OpPrintFooter
}
