package cli

var (
	LoadEnvFile   = loadEnvFile
	FilterEntries = filterEntries
	CountByAgent  = countByAgent
)
