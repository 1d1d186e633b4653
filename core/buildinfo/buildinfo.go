package buildinfo

// Set at build time, for example:
//
//	go build -ldflags "-X 'github.com/m3rciful/insurancebot/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/insurancebot/core/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/m3rciful/insurancebot/core/buildinfo.Date=$(date -u +%FT%TZ)'" ./cmd/insurancebot
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the short revision the binary was built from.
	Commit = "local"
	// Date is the RFC3339 build time.
	Date = ""
)

// String renders the build metadata for startup logs and the health endpoint.
func String() string {
	s := Version + " (" + Commit
	if Date != "" {
		s += ", " + Date
	}
	return s + ")"
}
