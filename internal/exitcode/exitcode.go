package exitcode

const (
	Success       = 0
	UsageError    = 1
	RuleSetError  = 2
	InputError    = 3
	DBConnError   = 4
	OutputError   = 5
	CopyError     = 6
	FinalizeError = 7
)
